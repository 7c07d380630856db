package utils

import (
	"errors"
	"fmt"
	"regexp"
)

var clockTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateShiftTimeWindow 校验到岗/离岗时间
// 时间是补零后的 HH:MM，直接按字典序比较先后即可，因此不支持跨天的班次
func ValidateShiftTimeWindow(arrivalTime string, leavingTime string) error {
	if !clockTimePattern.MatchString(arrivalTime) {
		return fmt.Errorf("到岗时间 %q 格式错误，应为 HH:MM", arrivalTime)
	}
	if !clockTimePattern.MatchString(leavingTime) {
		return fmt.Errorf("离岗时间 %q 格式错误，应为 HH:MM", leavingTime)
	}
	if arrivalTime >= leavingTime {
		return errors.New("离岗时间必须晚于到岗时间")
	}

	return nil
}
