// Package autoload initializes the global logger from the LOG_* environment
// on import.
package autoload

import (
	configx "github.com/chatcart/chatcart/pkg/config"
	logx "github.com/chatcart/chatcart/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
