package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/damacus/ironshelf/internal/handlers"
	customMiddleware "github.com/damacus/ironshelf/internal/middleware"
	"github.com/damacus/ironshelf/internal/renderer"
	"github.com/damacus/ironshelf/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *appContainer) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Long: `Serves the web UI on the configured address (server.addr, loopback by
default). The store connection is made from the browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}
			e, err := newServer(app)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info().Str("addr", addr).Msg("serving web UI")
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			app.Logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return serveCmd
}

func newServer(app *appContainer) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Template Renderer
	r, err := renderer.New()
	if err != nil {
		return nil, err
	}
	e.Renderer = r
	e.HTTPErrorHandler = handlers.ErrorHandler(app.Logger)

	sealer := services.NewSessionSealer(app.Config.Server.SessionKey)
	connectHandler := handlers.NewConnectHandler(app.Dispatch, sealer, app.Config.History.RememberSecrets)
	preferencesHandler := handlers.NewPreferencesHandler(app.Dispatch)
	bucketsHandler := handlers.NewBucketsHandler(app.Dispatch)
	browserHandler := handlers.NewBrowserHandler(app.Dispatch, services.DefaultPageSize)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(customMiddleware.RequestLogger(app.Logger))
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(customMiddleware.CSRF())
	e.Use(customMiddleware.Locale(app.Catalog, app.Dispatch))
	// Session middleware skips public routes internally
	e.Use(customMiddleware.Session(sealer, app.Sessions))

	// Public Routes
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/connect", connectHandler.ConnectPage)
	e.POST("/connect", connectHandler.Connect)
	e.POST("/connect/forget", connectHandler.Forget)
	e.POST("/preferences/theme", preferencesHandler.SetTheme)
	e.POST("/preferences/language", preferencesHandler.SetLanguage)

	// Protected Routes
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/buckets")
	})
	e.POST("/disconnect", connectHandler.Disconnect)

	e.GET("/buckets", bucketsHandler.ListBuckets)
	e.GET("/buckets/create", bucketsHandler.CreateBucketModal)
	e.POST("/buckets/create", bucketsHandler.CreateBucket)
	e.POST("/buckets/delete", bucketsHandler.DeleteBucket)
	e.GET("/buckets/:bucketName/visibility", bucketsHandler.BucketVisibility)
	e.POST("/buckets/:bucketName/visibility", bucketsHandler.SetBucketVisibility)

	// Object Browser
	e.GET("/buckets/:bucketName", browserHandler.BrowseBucket)
	e.POST("/buckets/:bucketName/upload", browserHandler.UploadObject)
	e.POST("/buckets/:bucketName/delete", browserHandler.DeleteObjects)
	e.GET("/buckets/:bucketName/download", browserHandler.DownloadObject)
	e.POST("/buckets/:bucketName/share", browserHandler.GenerateShareLink)
	e.POST("/buckets/:bucketName/rename", browserHandler.RenameObject)
	e.POST("/buckets/:bucketName/object/visibility", browserHandler.SetObjectVisibility)
	e.GET("/buckets/:bucketName/folder/create", browserHandler.CreateFolderModal)
	e.POST("/buckets/:bucketName/folder/create", browserHandler.CreateFolder)
	e.POST("/buckets/:bucketName/folder/delete", browserHandler.DeleteFolder)

	return e, nil
}
