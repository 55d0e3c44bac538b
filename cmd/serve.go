package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/sheetdash/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		mode := c.GinMode
		if debug {
			mode = gin.DebugMode
		}
		gin.SetMode(mode)

		wb, err := openWorkbook()
		if err != nil {
			return err
		}
		defer wb.Close()
		if len(wb.SheetNames()) == 0 {
			return fmt.Errorf("workbook %s has no sheets", wb.Path())
		}

		srv, err := web.NewServer(wb, web.Options{
			Title:          c.Title,
			LogoPath:       c.LogoPath,
			ColorPrimary:   c.ColorPrimary,
			ColorSecondary: c.ColorSecondary,
			ColorAccent:    c.ColorAccent,
			ChartFormat:    c.ChartFormat,
			ChartWidth:     c.ChartWidthPx,
			ChartHeight:    c.ChartHeightPx,
			Debug:          debug,
		})
		if err != nil {
			return err
		}
		if _, err := os.Stat(c.LogoPath); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: logo %s not found; pages render without it\n", c.LogoPath)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s (%d sheets) at http://%s\n", wb.Path(), len(wb.SheetNames()), addr)
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
}
