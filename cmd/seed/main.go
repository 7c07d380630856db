package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/repository"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/seed"
	"github.com/sysu-ecnc-dev/volunteer-shift/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var rosterPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机班次, 3: 导入志愿者名册 CSV)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&rosterPath, "roster", "./internal/seed/data/roster.csv", "志愿者名册 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}
		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("插入随机用户失败", slog.String("error", err.Error()))
				cnt--
				continue
			}
		}
		slog.Info("插入随机用户完成", "count", cnt)
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的班次数量")
			return
		}
		cnt := n
		for i := 0; i < n; i++ {
			shift := utils.GenerateRandomShift()
			if err := repo.CreateShift(shift); err != nil {
				slog.Error("插入随机班次失败", slog.String("error", err.Error()))
				cnt--
				continue
			}
		}
		slog.Info("插入随机班次完成", "count", cnt)
	case 3:
		if err := seed.ImportVolunteerRoster(repo, rosterPath, cfg.Seed.User.Password); err != nil {
			slog.Error("导入志愿者名册失败", slog.String("error", err.Error()))
			return
		}
	default:
		slog.Error("未知的操作", "op", op)
	}
}
