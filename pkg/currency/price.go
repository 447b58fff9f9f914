package currency

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thaoanhhaa1/kltn-backend/model"
)

// 金额片段：数字 + 可选单位（triệu / đồng），简写后缀 tr/k 在捕获组外消耗，
// 由 preprocessShorthand 根据原始查询展开
const amountPattern = `((\d+(?:\.\d+)?)\s*(?:triệu)?\s*(?:đồng)?)(?:tr|k)?`

var (
	approxRe = regexp.MustCompile(`(?i)(?:khoảng|tầm)\s+` + amountPattern)
	rangeRe  = regexp.MustCompile(`(?i)từ ` + amountPattern + ` đến ` + amountPattern)
	minRe    = regexp.MustCompile(`(?i)(?:trên|lớn hơn|cao hơn)\s+` + amountPattern)
	maxRe    = regexp.MustCompile(`(?i)(?:dưới|nhỏ hơn|thấp hơn|bé hơn)\s+` + amountPattern)
)

// 近似价格的对称容差
const approxTolerance = 0.2

// ParsePriceFilter 从查询文本中解析价格意图，四种模式互斥，按
// 近似 -> 区间 -> 下限 -> 上限 的优先级取第一个命中的。
// 数字解析失败视为没有价格约束，返回 nil，绝不报错。
func ParsePriceFilter(query string) *model.PriceFilter {
	if m := approxRe.FindStringSubmatch(query); m != nil {
		approx, err := normalizePrice(preprocessShorthand(query, m[1]))
		if err != nil {
			return nil
		}
		min := approx * (1 - approxTolerance)
		max := approx * (1 + approxTolerance)
		return &model.PriceFilter{Min: &min, Max: &max}
	}

	if m := rangeRe.FindStringSubmatch(query); m != nil {
		min, err := normalizePrice(preprocessShorthand(query, m[1]))
		if err != nil {
			return nil
		}
		max, err := normalizePrice(preprocessShorthand(query, m[3]))
		if err != nil {
			return nil
		}
		return &model.PriceFilter{Min: &min, Max: &max}
	}

	if m := minRe.FindStringSubmatch(query); m != nil {
		min, err := normalizePrice(preprocessShorthand(query, m[1]))
		if err != nil {
			return nil
		}
		return &model.PriceFilter{Min: &min}
	}

	if m := maxRe.FindStringSubmatch(query); m != nil {
		max, err := normalizePrice(preprocessShorthand(query, m[1]))
		if err != nil {
			return nil
		}
		return &model.PriceFilter{Max: &max}
	}

	return nil
}

// preprocessShorthand 展开货币简写：数字紧跟 "tr" 展开为 "<n> triệu"，
// 紧跟 "k" 则追加 "000"。匹配不到简写时原样返回。
func preprocessShorthand(query, match string) string {
	if strings.Contains(query, match+"tr") || strings.Contains(query, match+" tr") {
		return match + " triệu"
	}

	if strings.Contains(query, match+"k") || strings.Contains(query, match+" k") {
		return match + "000"
	}

	return match
}

// normalizePrice 去掉千分位/小数分隔符后按单位换算成 đồng
func normalizePrice(priceStr string) (float64, error) {
	priceStr = strings.ToLower(priceStr)
	priceStr = strings.ReplaceAll(priceStr, ".", "")
	priceStr = strings.ReplaceAll(priceStr, ",", "")

	if strings.Contains(priceStr, "triệu") {
		priceStr = strings.ReplaceAll(priceStr, "triệu đồng", "")
		priceStr = strings.ReplaceAll(priceStr, "triệu", "")
		value, err := strconv.ParseInt(strings.TrimSpace(priceStr), 10, 64)
		if err != nil {
			return 0, err
		}
		return float64(value) * 1_000_000, nil
	}

	if strings.Contains(priceStr, "đồng") {
		priceStr = strings.ReplaceAll(priceStr, "đồng", "")
		value, err := strconv.ParseInt(strings.TrimSpace(priceStr), 10, 64)
		if err != nil {
			return 0, err
		}
		return float64(value), nil
	}

	value, err := strconv.ParseInt(strings.TrimSpace(priceStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return float64(value), nil
}
