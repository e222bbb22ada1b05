package bootstrap

import (
	"testing"

	"github.com/smallbiznis/propbill/internal/config"
	"github.com/smallbiznis/propbill/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestCoreGraphResolves(t *testing.T) {
	err := fx.ValidateApp(
		Core(),
		fx.Invoke(func(*scheduler.Scheduler) {}),
	)
	assert.NoError(t, err)
}

func TestNewSnowflakeRejectsOutOfRangeNode(t *testing.T) {
	_, err := NewSnowflake(config.Config{NodeID: 4096})
	assert.Error(t, err)

	node, err := NewSnowflake(config.Config{NodeID: 3})
	require.NoError(t, err)
	assert.NotZero(t, node.Generate().Int64())
}
