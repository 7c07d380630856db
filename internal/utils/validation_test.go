package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/utils"
)

func TestValidateShiftTimeWindow(t *testing.T) {
	testCases := []struct {
		name        string
		arrivalTime string
		leavingTime string
		wantErr     bool
	}{
		{name: "正常时间段", arrivalTime: "08:00", leavingTime: "12:00", wantErr: false},
		{name: "一分钟的班次", arrivalTime: "08:00", leavingTime: "08:01", wantErr: false},
		{name: "最晚的时间", arrivalTime: "00:00", leavingTime: "23:59", wantErr: false},
		{name: "到岗时间未补零", arrivalTime: "8:00", leavingTime: "12:00", wantErr: true},
		{name: "离岗时间未补零", arrivalTime: "08:00", leavingTime: "9:00", wantErr: true},
		{name: "小时越界", arrivalTime: "24:00", leavingTime: "25:00", wantErr: true},
		{name: "分钟越界", arrivalTime: "08:60", leavingTime: "12:00", wantErr: true},
		{name: "到岗晚于离岗", arrivalTime: "12:00", leavingTime: "08:00", wantErr: true},
		{name: "到岗等于离岗", arrivalTime: "08:00", leavingTime: "08:00", wantErr: true},
		{name: "空字符串", arrivalTime: "", leavingTime: "", wantErr: true},
		{name: "带秒的时间", arrivalTime: "08:00:00", leavingTime: "12:00:00", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := utils.ValidateShiftTimeWindow(tc.arrivalTime, tc.leavingTime)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
