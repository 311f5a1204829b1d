package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger. Development mode uses the human-readable
// console encoder.
func New(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
