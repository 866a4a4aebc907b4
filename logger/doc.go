// Package logger provides structured logging for beankit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. The bean manager logs its lifecycle events
// (bean-added, bean-replaced, bean-created, bean-found) through this package.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("di")
//	log.Info("bean replaced", logger.Fields(logger.FieldBean, "hello"))
package logger
