package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"absolute/pkg/config"
)

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "***@db:5432/sites", redactDSN("postgres://user:secret@db:5432/sites"))
	assert.Equal(t, "db:5432", redactDSN("db:5432"))
}

func TestOptionalBackends(t *testing.T) {
	log := zap.NewNop().Sugar()
	assert.Nil(t, MustConnect(config.Config{}, log))
	assert.Nil(t, MustRedis(config.Config{}, log))
}
