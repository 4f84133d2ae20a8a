package idgen

import (
	"fmt"
	"regexp"
	"testing"

	"parcelhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// neverExists 空唯一性集合
func neverExists(string) (bool, error) {
	return false, nil
}

func TestGenerateTenantCode(t *testing.T) {
	countByYear := func(year int) (int64, error) { return 41, nil }

	code, err := GenerateTenantCode(countByYear, neverExists)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^AGY-\d{4}-00042$`), code)
}

func TestGenerateTenantCodeRetriesOnCollision(t *testing.T) {
	countByYear := func(year int) (int64, error) { return 0, nil }

	// 前两个候选已被占用
	taken := map[string]bool{}
	first := true
	exists := func(value string) (bool, error) {
		if first {
			first = false
			taken[value] = true
		}
		return taken[value], nil
	}

	code, err := GenerateTenantCode(countByYear, exists)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^AGY-\d{4}-00002$`), code)
}

func TestGenerateTenantCodeFallback(t *testing.T) {
	countByYear := func(year int) (int64, error) { return 0, nil }

	// 顺序候选全部冲突，只有回退值可用
	calls := 0
	exists := func(value string) (bool, error) {
		calls++
		return calls <= 5, nil
	}

	code, err := GenerateTenantCode(countByYear, exists)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 6, calls, "重试必须有界")
}

func TestGenerateTenantCodeExhausted(t *testing.T) {
	countByYear := func(year int) (int64, error) { return 0, nil }
	alwaysTaken := func(string) (bool, error) { return true, nil }

	_, err := GenerateTenantCode(countByYear, alwaysTaken)
	require.Error(t, err)
	var exhausted *errors.UniquenessExhaustedError
	assert.ErrorAs(t, err, &exhausted)
}

func TestGenerateShipmentNumber(t *testing.T) {
	number := GenerateShipmentNumber("AGY-2026-00001")
	assert.Regexp(t, regexp.MustCompile(`^SHP-AGY-2026-00001-\d+-\d{4}$`), number)
}

func TestTrackingNumberRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		number, err := GenerateTrackingNumber(neverExists)
		require.NoError(t, err)
		assert.True(t, ValidateTrackingNumber(number), "validate(generate())必须为真: %s", number)
	}
}

// 生成1万个运单号：全部通过校验、全部唯一、全部符合固定格式
func TestTrackingNumberBulkUniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		number, err := GenerateTrackingNumber(neverExists)
		require.NoError(t, err)
		require.True(t, ValidateTrackingNumber(number), number)
		require.Regexp(t, trackingPattern, number)
		require.False(t, seen[number], "运单号重复: %s", number)
		seen[number] = true
	}
}

// 任意单字符替换都必须被校验和捕获
func TestTrackingNumberSingleCharCorruption(t *testing.T) {
	number, err := GenerateTrackingNumber(neverExists)
	require.NoError(t, err)

	// TRK-YYYYMMDD-XXXXXXXX-C：逐位替换为同字符类的其他字符
	for pos := 4; pos < len(number); pos++ {
		if number[pos] == '-' {
			continue
		}
		var candidates string
		if pos < 12 {
			candidates = "0123456789"
		} else {
			candidates = trackingAlphabet
		}
		for i := 0; i < len(candidates); i++ {
			if candidates[i] == number[pos] {
				continue
			}
			mutated := number[:pos] + string(candidates[i]) + number[pos+1:]
			assert.False(t, ValidateTrackingNumber(mutated),
				"位置%d替换为%c未被检出: %s", pos, candidates[i], mutated)
		}
	}
}

func TestValidateTrackingNumberRejectsBadShape(t *testing.T) {
	cases := []string{
		"",
		"TRK-20260829-ABCDEFGH",      // 缺校验位
		"SHP-20260829-ABCDEFGH-2",    // 前缀错误
		"TRK-2026089-ABCDEFGH-2",     // 日期位数不足
		"TRK-20260829-ABCDEFG1-2",    // 随机段含易混淆字符
		"TRK-20260829-ABCDEFGHJ-2",   // 随机段过长
		"trk-20260829-abcdefgh-2",    // 小写
		"TRK-20260829-ABCDEFGH-22",   // 校验段过长
		"TRK-20260829-ABCD EFGH-2",   // 含空格
		fmt.Sprintf("%0*d", 22, 123), // 纯数字串
	}
	for _, c := range cases {
		assert.False(t, ValidateTrackingNumber(c), c)
	}
}

func TestTrackingNumberFallbackStillValid(t *testing.T) {
	// 前5次顺序候选全部冲突，触发时间戳加盐的回退
	calls := 0
	exists := func(string) (bool, error) {
		calls++
		return calls <= 5, nil
	}

	number, err := GenerateTrackingNumber(exists)
	require.NoError(t, err)
	assert.True(t, ValidateTrackingNumber(number))
	assert.Equal(t, 6, calls)
}
