package main

import (
	"fmt"
	"os"

	"project-portal/cmd/server"
	"project-portal/config"
	"project-portal/internal/global/database"
	"project-portal/internal/global/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "课程项目提交与审核平台",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		teacherCmd(),
		grantStaffCmd(),
		resetPasswordCmd(),
	)
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Run: func(cmd *cobra.Command, args []string) {
			server.Init()
			server.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "自动迁移数据库表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			// database.Init 连接后会执行迁移
			connect()
			logger.New("CLI").Info("数据库迁移完成")
			return nil
		},
	}
}

// connect 命令行工具只需要配置和数据库
func connect() {
	config.Init()
	database.Init()
}
