package usecase

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
	applogger "AlertPulse/pkg/logger"
)

// AnomalyScheduler periodically re-scans the signal archive for bursts of
// activity and emits synthetic volume signals into the same OnSignal entry
// point used by real-time producers, so the pipeline has one ingestion
// contract regardless of origin.
type AnomalyScheduler struct {
	pipeline *SignalNotificationPipeline
	archive  domrepo.SignalArchive
	logger   *applogger.Logger
	cron     *cron.Cron
	spec     string
	symbols  []string

	scanWindow   int // signals per symbol to inspect
	mentionSpike int // mention-count sum that counts as a burst
}

func NewAnomalyScheduler(
	pipeline *SignalNotificationPipeline,
	archive domrepo.SignalArchive,
	logger *applogger.Logger,
	spec string,
	symbols []string,
) *AnomalyScheduler {
	if spec == "" {
		spec = "@every 15m"
	}
	return &AnomalyScheduler{
		pipeline:     pipeline,
		archive:      archive,
		logger:       logger,
		cron:         cron.New(),
		spec:         spec,
		symbols:      symbols,
		scanWindow:   50,
		mentionSpike: 100,
	}
}

func (s *AnomalyScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Scan(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("anomaly scheduler started", applogger.String("spec", s.spec))
	return nil
}

func (s *AnomalyScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Scan inspects recent archived signals per symbol and injects a synthetic
// volume signal when mention activity spikes. Errors are logged and the scan
// continues with the next symbol.
func (s *AnomalyScheduler) Scan(ctx context.Context) {
	for _, sym := range s.symbols {
		recent, err := s.archive.Recent(ctx, sym, "", s.scanWindow)
		if err != nil {
			s.logger.Warn("anomaly scan query failed",
				applogger.String("symbol", sym), applogger.Error(err))
			continue
		}

		mentions := 0
		cutoff := time.Now().Add(-time.Hour)
		for _, sig := range recent {
			if sig.Timestamp.Before(cutoff) {
				continue
			}
			for _, src := range sig.Sources {
				mentions += src.MentionCount
			}
		}
		if mentions < s.mentionSpike {
			continue
		}

		synthetic := &models.Signal{
			AssetSymbol: sym,
			Kind:        models.KindVolume,
			Strength:    strengthFromMentions(mentions, s.mentionSpike),
			Description: "unusual mention volume over the last hour",
			Sources:     []models.SignalSource{{OriginPlatform: "anomaly-scan", MentionCount: mentions}},
			Timestamp:   time.Now(),
		}
		if err := s.pipeline.OnSignal(ctx, synthetic); err != nil {
			s.logger.Warn("synthetic signal rejected",
				applogger.String("symbol", sym), applogger.Error(err))
		}
	}
}

// strengthFromMentions maps mention volume onto the 0-100 strength scale,
// saturating at 4x the spike threshold.
func strengthFromMentions(mentions, spike int) float64 {
	v := float64(mentions) / float64(4*spike) * 100
	if v > 100 {
		return 100
	}
	if v < 50 {
		return 50
	}
	return v
}
