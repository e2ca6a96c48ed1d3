package cli

import (
	"bytes"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesCommand(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"routes", "drink"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "/api/drink/verify/:id")
	assert.Contains(t, out.String(), "/api/health")
	assert.NotContains(t, out.String(), "/api/trips")
}

func TestServiceArgRejectsUnknown(t *testing.T) {
	assert.Error(t, serviceArg(routesCmd, []string{"teleport"}))
	assert.Error(t, serviceArg(routesCmd, nil))
	assert.NoError(t, serviceArg(routesCmd, []string{"trip"}))
}
