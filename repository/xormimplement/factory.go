package xormimplement

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"xorm.io/xorm"

	_ "github.com/lib/pq"

	"github.com/thaoanhhaa1/kltn-backend/config"
	"github.com/thaoanhhaa1/kltn-backend/repository"
	"github.com/thaoanhhaa1/kltn-backend/repository/factory"
	"github.com/thaoanhhaa1/kltn-backend/repository/interfaces"
)

type Factory struct {
	// 连接 pg
	engine *xorm.Engine
}

// NewFactory 由 main 构造并注入，不做包级单例
func NewFactory(cfg *config.Config) (factory.Factory, error) {
	engine, err := openDB(
		cfg.GetString(config.BaseDbXormType),
		cfg.GetString(config.BaseDbXormHost),
		cfg.GetString(config.BaseDbXormPort),
		cfg.GetString(config.BaseDbXormUsername),
		cfg.GetString(config.BaseDbXormName),
		cfg.GetString(config.BaseDbXormPassword),
		cfg.GetBool(config.BaseDbXormShowsql),
	)
	if err != nil {
		return nil, err
	}
	return &Factory{engine: engine}, nil
}

// 设置xorm的连接参数
func openDB(dbType string, host string, port string, userName string, name string, password string, showSql bool) (*xorm.Engine, error) {
	//拼接数据库参数
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Ho_Chi_Minh",
		host,
		userName,
		password,
		name,
		port)
	//设置连接参数
	engine, err := xorm.NewEngine(dbType, dsn)
	if err != nil {
		logrus.Errorf("Database connection failed err: %v. Database name: %s", err, name)
		return nil, err
	}
	//是否展示sql文件
	engine.ShowSQL(showSql)
	return engine, nil
}

// 创建一个会话
func (f *Factory) NewSession(ctx context.Context) interfaces.Session {
	return &Session{Session: f.engine.NewSession().Context(ctx)}
}

// NewChatTurnRepository 创建对话历史仓库
func (f *Factory) NewChatTurnRepository(session interfaces.Session) (repository.ChatTurnRepository, error) {
	if s, ok := session.(*Session); ok {
		return NewChatTurnRepository(s), nil
	}
	return nil, fmt.Errorf("xorm session 结构解析失败")
}

// NewVectorIndexRepository 创建向量索引仓库
func (f *Factory) NewVectorIndexRepository(session interfaces.Session) (repository.VectorIndexRepository, error) {
	if s, ok := session.(*Session); ok {
		return NewVectorIndexRepository(s), nil
	}
	return nil, fmt.Errorf("xorm session 结构解析失败")
}
