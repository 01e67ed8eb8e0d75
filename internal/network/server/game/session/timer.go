package session

import (
	"time"

	"github.com/mpopesco/whist-go/internal/logger"
)

// 自动推进全靠这两个定时器：墩间停顿和局间停顿。调度和取消都持
// timerMu，回调进入 AdvanceTrick / AdvanceHand 后按阶段自校验，
// 重复触发是无害的。重连宽限期内一律不调度，等宽限解除后补上。

func (gs *GameSession) schedulePauseTimer() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()
	if gs.graceActive {
		return
	}
	if gs.pauseTimer != nil {
		gs.pauseTimer.Stop()
	}
	gs.pauseTimer = time.AfterFunc(gs.gameConfig().TrickPauseDuration(), gs.AdvanceTrick)
}

func (gs *GameSession) cancelPauseTimer() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()
	if gs.pauseTimer != nil {
		gs.pauseTimer.Stop()
		gs.pauseTimer = nil
	}
}

func (gs *GameSession) scheduleHandEndTimer() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()
	if gs.graceActive {
		return
	}
	if gs.handEndTimer != nil {
		gs.handEndTimer.Stop()
	}
	gs.handEndTimer = time.AfterFunc(gs.gameConfig().HandEndDuration(), gs.AdvanceHand)
}

func (gs *GameSession) cancelHandEndTimer() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()
	if gs.handEndTimer != nil {
		gs.handEndTimer.Stop()
		gs.handEndTimer = nil
	}
}

// SeatOffline 有人掉线：标记座位并拉起重连宽限，期间暂停自动推进，
// 给掉线方追上当前画面的机会。
func (gs *GameSession) SeatOffline(playerID string) {
	gs.mu.Lock()
	idx := gs.seatByID(playerID)
	if idx < 0 {
		gs.mu.Unlock()
		return
	}
	gs.seats[idx].Offline = true
	running := gs.phase != PhaseWaiting && gs.phase != PhaseGameEnd
	gs.mu.Unlock()
	if !running {
		return
	}

	gs.timerMu.Lock()
	gs.graceActive = true
	for _, t := range []*time.Timer{gs.pauseTimer, gs.handEndTimer, gs.botTimer} {
		if t != nil {
			t.Stop()
		}
	}
	gs.pauseTimer, gs.handEndTimer, gs.botTimer = nil, nil, nil
	if gs.graceTimer != nil {
		gs.graceTimer.Stop()
	}
	gs.graceTimer = time.AfterFunc(gs.gameConfig().ReconnectGraceDuration(), gs.liftGrace)
	gs.timerMu.Unlock()

	logger.LogInfo("房间 %s 座位 %d 掉线，进入重连宽限", gs.room.GetCode(), idx)
}

// SeatOnline 掉线座位回来了。全员在线时立即解除宽限。
func (gs *GameSession) SeatOnline(playerID string) {
	gs.mu.Lock()
	idx := gs.seatByID(playerID)
	if idx < 0 {
		gs.mu.Unlock()
		return
	}
	gs.seats[idx].Offline = false
	allOnline := true
	for _, s := range gs.seats {
		if s.Offline {
			allOnline = false
			break
		}
	}
	gs.mu.Unlock()

	if allOnline {
		gs.liftGrace()
	}
}

// liftGrace 解除宽限并按当前阶段补回该有的定时器。宽限到期
// 后即使还有人离线也会走到这里：比赛不再等待，轮到离线座位
// 时由托管代打。
func (gs *GameSession) liftGrace() {
	gs.timerMu.Lock()
	if !gs.graceActive {
		gs.timerMu.Unlock()
		return
	}
	gs.graceActive = false
	if gs.graceTimer != nil {
		gs.graceTimer.Stop()
		gs.graceTimer = nil
	}
	gs.timerMu.Unlock()

	switch gs.Phase() {
	case PhaseTrickPause:
		gs.schedulePauseTimer()
	case PhaseHandEnd:
		gs.scheduleHandEndTimer()
	}
	gs.scheduleBotCheck()
}
