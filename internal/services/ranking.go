package services

import "github.com/shopspring/decimal"

// competitionRanks ранжирует значения по убыванию: равные значения делят место,
// следующее место равно 1 + количество строго лучших значений (1, 1, 3).
func competitionRanks(values []decimal.Decimal) []int {
	ranks := make([]int, len(values))
	for i, v := range values {
		rank := 1
		for _, other := range values {
			if other.GreaterThan(v) {
				rank++
			}
		}
		ranks[i] = rank
	}
	return ranks
}

var hundred = decimal.NewFromInt(100)

// weighted возвращает weight/100 * value.
func weighted(weight, value decimal.Decimal) decimal.Decimal {
	return weight.Div(hundred).Mul(value)
}
