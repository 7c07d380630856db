package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/repository"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var validRoles = map[string]domain.Role{
	string(domain.RoleVolunteer): domain.RoleVolunteer,
	string(domain.RoleOfficer):   domain.RoleOfficer,
	string(domain.RoleBlackCore): domain.RoleBlackCore,
}

// ImportVolunteerRoster 从 CSV 文件导入志愿者名册
// 表头要求为 full_name,email,role，用户名由姓名的拼音生成，密码统一为传入的初始密码
func ImportVolunteerRoster(r *repository.Repository, path string, password string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("读取表头失败: %w", err)
	}
	if len(headers) < 3 || headers[0] != "full_name" || headers[1] != "email" || headers[2] != "role" {
		return errors.New("表头必须为 full_name,email,role")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	imported := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		role, ok := validRoles[record[2]]
		if !ok {
			slog.Warn("跳过角色无效的记录", "fullName", record[0], "role", record[2])
			continue
		}

		user := &domain.User{
			Username:     utils.GenerateUsernameFromChineseName(record[0]),
			PasswordHash: string(passwordHash),
			FullName:     record[0],
			Email:        record[1],
			Role:         role,
		}

		if err := r.CreateUser(user); err != nil {
			slog.Warn("插入用户失败", "fullName", record[0], "error", err)
			continue
		}
		imported++
	}

	slog.Info("名册导入完成", "imported", imported)
	return nil
}
