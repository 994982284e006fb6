package server

import (
	"context"
	"time"

	"cyberlab/internal/job"
	"cyberlab/pkg/log"

	"github.com/go-co-op/gocron"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type JobServer struct {
	log       *log.Logger
	conf      *viper.Viper
	scheduler *gocron.Scheduler
	nodeSync  job.NodeSyncJob
	sweep     job.StatusSweepJob
}

func NewJobServer(
	log *log.Logger,
	conf *viper.Viper,
	nodeSync job.NodeSyncJob,
	sweep job.StatusSweepJob,
) *JobServer {
	return &JobServer{
		log:       log,
		conf:      conf,
		scheduler: gocron.NewScheduler(time.UTC),
		nodeSync:  nodeSync,
		sweep:     sweep,
	}
}

func (s *JobServer) Start(ctx context.Context) error {
	syncInterval := s.conf.GetInt("job.node_sync_interval_seconds")
	if syncInterval <= 0 {
		syncInterval = 300
	}
	sweepInterval := s.conf.GetInt("job.status_sweep_interval_seconds")
	if sweepInterval <= 0 {
		sweepInterval = 600
	}

	_, err := s.scheduler.Every(syncInterval).Seconds().Do(func() {
		if err := s.nodeSync.Run(ctx); err != nil {
			s.log.Error("NodeSyncJob error", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	_, err = s.scheduler.Every(sweepInterval).Seconds().Do(func() {
		if err := s.sweep.Run(ctx); err != nil {
			s.log.Error("StatusSweepJob error", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.log.Info("job server started",
		zap.Int("node_sync_interval_seconds", syncInterval),
		zap.Int("status_sweep_interval_seconds", sweepInterval))
	s.scheduler.StartBlocking()
	return nil
}

func (s *JobServer) Stop(ctx context.Context) error {
	s.scheduler.Stop()
	s.log.Info("job server stopped")
	return nil
}
