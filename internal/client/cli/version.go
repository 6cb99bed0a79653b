package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/version"
)

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and server versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "client: %s\n", version.Version)

			h, err := a.api.Health(cmd.Context())
			if err != nil {
				fmt.Fprintf(a.out, "server: unreachable (%v)\n", err)
				return nil
			}
			fmt.Fprintf(a.out, "server: %s (%s)\n", h.Version, h.Status)
			if msg := compatibility(version.Version, h.Version); msg != "" {
				fmt.Fprintln(a.errOut, msg)
			}
			return nil
		},
	}
}

// checkServerVersion предупреждает о несовпадении мажорной версии API.
// Недоступность /health не мешает входу.
func (a *App) checkServerVersion(ctx context.Context) {
	h, err := a.api.Health(ctx)
	if err != nil {
		a.log.Debug("health check failed", sl.Err(err))
		return
	}
	if msg := compatibility(version.Version, h.Version); msg != "" {
		a.log.Warn(msg, slog.String("server_version", h.Version))
	}
}

// compatibility возвращает текст предупреждения или пустую строку.
func compatibility(clientVersion, serverVersion string) string {
	if !semver.IsValid(serverVersion) {
		return fmt.Sprintf("warning: server reports non-semver version %q", serverVersion)
	}
	if semver.Major(clientVersion) != semver.Major(serverVersion) {
		return fmt.Sprintf("warning: server API %s is not compatible with client %s",
			semver.Major(serverVersion), semver.Major(clientVersion))
	}
	return ""
}
