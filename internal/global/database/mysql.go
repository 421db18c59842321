package database

import (
	"net"
	"time"

	"project-portal/config"
	"project-portal/internal/global/sentry/tracing"
	"project-portal/internal/model"
	"project-portal/tools"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

func Init() {
	db, err := Open(mysql.Open(DSN(config.Get().Mysql)))
	tools.PanicOnErr(err)
	tools.PanicOnErr(Migrate(db))
	DB = db
}

// DSN 由 go-sql-driver 拼接，避免密码中的特殊字符破坏格式
func DSN(c config.Mysql) string {
	dc := mysqldriver.NewConfig()
	dc.User = c.Username
	dc.Passwd = c.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(c.Host, c.Port)
	dc.DBName = c.DBName
	dc.ParseTime = true
	// 条件更新依赖 RowsAffected，值未变化时也要计入
	dc.ClientFoundRows = true
	dc.Loc = time.Local
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

// Open 按当前模式配置 gorm，测试中传入 sqlite dialector
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true}, // 还是单数表名好
		TranslateError: true,
	}

	switch config.Get().Mode {
	case config.ModeDebug:
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case config.ModeRelease:
		gormConfig.Logger = logger.Discard
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}
	if tracing.IsEnabled() {
		if err := db.Use(tracing.NewGormTracingPlugin()); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate 自动迁移全部模型
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
