package rule

import "errors"

var (
	// ErrBidOutOfRange 叫牌超出 [0, 手牌数] 范围
	ErrBidOutOfRange = errors.New("叫牌超出范围")
	// ErrBidHooked 庄家触发总和限制：所有叫牌之和不得等于手牌数
	ErrBidHooked = errors.New("庄家不能叫这个数：总和不能等于手牌数")
)

// ForbiddenDealerBid 返回庄家被禁止的叫牌值。
// 庄家最后叫牌，禁止让所有叫牌之和恰好等于手牌数，
// 保证每局至少有一个座位叫空。返回值可能落在合法范围之外，
// 此时庄家不受额外限制。
func ForbiddenDealerBid(handSize, othersSum int) int {
	return handSize - othersSum
}

// ValidateBid 校验一次叫牌。othersSum 为其他座位已记录的叫牌之和，
// 仅在 isDealer 为真时参与校验。
func ValidateBid(bid, handSize, othersSum int, isDealer bool) error {
	if bid < 0 || bid > handSize {
		return ErrBidOutOfRange
	}
	if isDealer && bid == ForbiddenDealerBid(handSize, othersSum) {
		return ErrBidHooked
	}
	return nil
}
