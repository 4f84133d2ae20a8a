package idgen

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"parcelhub/pkg/errors"
)

// trackingAlphabet 32符号字母表，排除易混淆的 0/1/I/O
const trackingAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	// maxAttempts 唯一性探测的最大重试次数
	maxAttempts = 5

	// tenantCodePrefix 租户代码前缀
	tenantCodePrefix = "AGY"

	trackingRandomLength = 8
)

// trackingPattern 运单号固定格式 TRK-YYYYMMDD-8字符-校验字符
var trackingPattern = regexp.MustCompile(`^TRK-\d{8}-[2-9A-HJ-NP-Z]{8}-[2-9A-HJ-NP-Z]$`)

// ExistsFunc 唯一性探测函数，由持久化层提供
type ExistsFunc func(value string) (bool, error)

// CountByYearFunc 统计某一年已创建数量，由持久化层提供
type CountByYearFunc func(year int) (int64, error)

// ========== 租户代码 ==========

// GenerateTenantCode 生成租户代码，格式 AGY-YEAR-NNNNN
// 序号来自当年已有租户数+1，冲突时有界重试，重试耗尽后回退到时间戳+随机数组合
func GenerateTenantCode(countByYear CountByYearFunc, exists ExistsFunc) (string, error) {
	year := time.Now().Year()

	count, err := countByYear(year)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%d-%05d", tenantCodePrefix, year, count+1+int64(attempt))
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	// 回退路径：时间戳+随机数，保证前进而不是无限阻塞
	fallback := fmt.Sprintf("%s-%d-%05d%04d", tenantCodePrefix, year,
		time.Now().UnixNano()%100000, rand.Intn(10000))
	taken, err := exists(fallback)
	if err != nil {
		return "", err
	}
	if taken {
		return "", &errors.UniquenessExhaustedError{Kind: "tenant_code", Attempts: maxAttempts + 1}
	}
	return fallback, nil
}

// ========== 发货单号 ==========

// GenerateShipmentNumber 生成发货单号，格式 SHP-租户代码-时间戳-随机数
// 唯一性由时间戳+随机数的熵保证，属于实践上而非密码学上的保证
func GenerateShipmentNumber(tenantCode string) string {
	return fmt.Sprintf("SHP-%s-%d-%04d", tenantCode, time.Now().Unix(), rand.Intn(10000))
}

// ========== 运单号 ==========

// GenerateTrackingNumber 生成运单号，格式 TRK-YYYYMMDD-8字符-校验字符
// 冲突时有界重试，重试耗尽后回退到时间戳加盐的变体
func GenerateTrackingNumber(exists ExistsFunc) (string, error) {
	date := time.Now().Format("20060102")

	for attempt := 0; attempt < maxAttempts; attempt++ {
		random := randomTrackingChars(trackingRandomLength)
		candidate := assembleTrackingNumber(date, random)
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	// 回退路径：用纳秒时间戳改写随机段的前半部分
	salt := encodeInAlphabet(time.Now().UnixNano(), 4)
	random := salt + randomTrackingChars(trackingRandomLength-len(salt))
	fallback := assembleTrackingNumber(date, random)
	taken, err := exists(fallback)
	if err != nil {
		return "", err
	}
	if taken {
		return "", &errors.UniquenessExhaustedError{Kind: "tracking_number", Attempts: maxAttempts + 1}
	}
	return fallback, nil
}

// ValidateTrackingNumber 校验运单号
// 先检查固定格式，再重新计算校验字符比对；这是格式完整性检查，不是密码学证明
func ValidateTrackingNumber(value string) bool {
	if !trackingPattern.MatchString(value) {
		return false
	}

	// TRK-YYYYMMDD-XXXXXXXX-C
	parts := strings.Split(value, "-")
	check, ok := checksumChar(parts[1], parts[2])
	if !ok {
		return false
	}
	return parts[3][0] == check
}

// assembleTrackingNumber 拼装运单号并附加校验字符
func assembleTrackingNumber(date, random string) string {
	check, _ := checksumChar(date, random)
	return fmt.Sprintf("TRK-%s-%s-%c", date, random, check)
}

// checksumChar 对日期+随机段计算Luhn风格的加权交替和，对字母表长度取模
// 从右往左，权重2/1交替；加倍后溢出的值折回（减去字母表长度-1）
// 日期段按数字值取权值，随机段按字母表下标取权值，二者在各自的合法字符类内
// 都是单射，因此任何单字符替换都必然改变校验和
func checksumChar(date, random string) (byte, bool) {
	payload := date + random
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		var v int
		var ok bool
		if i < len(date) {
			v, ok = digitValue(payload[i])
		} else {
			v, ok = alphabetValue(payload[i])
		}
		if !ok {
			return 0, false
		}
		if double {
			v *= 2
			if v >= len(trackingAlphabet) {
				v -= len(trackingAlphabet) - 1
			}
		}
		sum += v
		double = !double
	}
	return trackingAlphabet[sum%len(trackingAlphabet)], true
}

// digitValue 日期字符的权值
func digitValue(c byte) (int, bool) {
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

// alphabetValue 随机段字符的权值（字母表下标）
func alphabetValue(c byte) (int, bool) {
	idx := strings.IndexByte(trackingAlphabet, c)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// randomTrackingChars 从字母表随机取n个字符
func randomTrackingChars(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = trackingAlphabet[rand.Intn(len(trackingAlphabet))]
	}
	return string(b)
}

// encodeInAlphabet 把数值编码为字母表字符，取低n位
func encodeInAlphabet(value int64, n int) string {
	if value < 0 {
		value = -value
	}
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = trackingAlphabet[value%int64(len(trackingAlphabet))]
		value /= int64(len(trackingAlphabet))
	}
	return string(b)
}
