package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/ui"
)

// AppContext holds what the root pre-run resolved from flags and the
// deployment file. Commands retrieve it via AppContextFrom instead of
// re-reading config.* globals.
type AppContext struct {
	Network    networks.Network
	Deployment config.Deployment
	Logger     *zap.Logger
	UI         ui.UI
}

type appContextKey struct{}

// WithAppContext attaches app to ctx and returns the new context.
func WithAppContext(ctx context.Context, app AppContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, appContextKey{}, app)
}

// AppContextFrom retrieves the AppContext attached to cmd by the root
// pre-run hook.
func AppContextFrom(cmd *cobra.Command) (AppContext, error) {
	app, ok := cmd.Context().Value(appContextKey{}).(AppContext)
	if !ok {
		return AppContext{}, fmt.Errorf("%s: command ran without being preprocessed", cmd.Name())
	}
	return app, nil
}
