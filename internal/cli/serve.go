package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/evidence-locker/internal/httpapi"
	"github.com/rcliao/evidence-locker/internal/metrics"
)

// tickEvery is how often the autosave tick runs; the configured interval
// decides whether a tick actually saves.
const tickEvery = time.Second

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the autosave loop",
		Run:   runServe,
	}
	cmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	listen, _ := cmd.Flags().GetString("listen")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, err := openSession(cmd.Context(), metrics.New(reg))
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if listen == "" {
		listen = s.cfg.Listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              listen,
		Handler:           httpapi.New(s.svc, s.log, reg).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		autosaveLoop(ctx, s, time.Now())
		return nil
	})

	err = g.Wait()
	if saveErr := s.svc.ForceSave(); saveErr != nil {
		s.log.Error("final save", "error", saveErr)
	}
	if err != nil {
		exitErr("serve", err)
	}
}

func autosaveLoop(ctx context.Context, s *session, start time.Time) {
	t := time.NewTicker(tickEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.svc.AutoSave(time.Since(start))
		}
	}
}
