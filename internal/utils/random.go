package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleVolunteer,
	domain.RoleOfficer,
	domain.RoleBlackCore,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var units = []domain.ShiftUnit{
	domain.UnitEastCampus,
	domain.UnitSouthCampus,
	domain.UnitNorthCampus,
	domain.UnitZhuhai,
}

var shiftTypes = []domain.ShiftType{
	domain.ShiftTypeMorning,
	domain.ShiftTypeNoon,
	domain.ShiftTypeEvening,
}

var shiftStatuses = []domain.ShiftStatus{
	domain.ShiftStatusOpen,
	domain.ShiftStatusPublished,
	domain.ShiftStatusLocked,
}

// GenerateRandomShift 生成前后 30 天内的一个随机班次
func GenerateRandomShift() *domain.Shift {
	date := time.Now().AddDate(0, 0, rand.Intn(61)-30)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	return &domain.Shift{
		Date:                 date,
		ShiftType:            shiftTypes[rand.Intn(len(shiftTypes))],
		Unit:                 units[rand.Intn(len(units))],
		RequiredVolunteers:   int32(rand.Intn(int(domain.MaxRequiredVolunteers)) + 1),
		Status:               shiftStatuses[rand.Intn(len(shiftStatuses))],
		RegisteredVolunteers: make([]domain.ShiftRegistration, 0),
		WaitlistVolunteers:   make([]domain.ShiftWaitlistEntry, 0),
		SharedNote:           "随机生成的班次，仅用于测试",
	}
}
