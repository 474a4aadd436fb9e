package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/systemdevart/random-coffee/internal/domain"
	"github.com/systemdevart/random-coffee/internal/topics"
)

// pairingAttempts bounds the reshuffles spent avoiding recently seen pairs.
const pairingAttempts = 20

// runPairing executes one complete run: fetch → filter → pair → format →
// post. Every failure is funneled into fail(), which logs and notifies the
// error recipient; nothing propagates, so the scheduling loop stays alive.
func (a *App) runPairing(ctx context.Context) {
	channel := a.cfg.Channel
	a.log.Info("starting pairing run", zap.String("channel", channel))

	members, err := a.directory.ListMembers(ctx, channel)
	if err != nil {
		a.fail(ctx, "Failed to fetch members for "+channel, err)
		return
	}

	humans := domain.FilterHumans(members, a.cfg.Exclude)
	if len(humans) < 2 {
		err := fmt.Errorf("%w: found %d eligible members in %s",
			domain.ErrInsufficientMembers, len(humans), channel)
		a.fail(ctx, "Pairing Process Warning", err)
		return
	}

	groups, err := domain.PairAvoiding(humans, a.recentPairs(ctx), pairingAttempts, a.rng)
	if err != nil {
		a.fail(ctx, "Failed to complete pairing for "+channel, err)
		return
	}
	a.log.Info("pairing groups created",
		zap.Int("groups", len(groups)),
		zap.String("summary", domain.Summary(groups)),
	)

	message := domain.FormatAnnouncement(groups, a.generateTopics(ctx))
	if err := a.messenger.PostMessage(ctx, channel, message); err != nil {
		a.fail(ctx, "Failed to complete pairing for "+channel, err)
		return
	}
	a.log.Info("pairing announcement posted", zap.String("channel", channel))

	if a.repo != nil {
		if err := a.repo.RecordRun(ctx, channel, a.now(), groups); err != nil {
			a.log.Warn("record pairing history failed", zap.Error(err))
		}
	}
}

// recentPairs loads the blocked-pair set for repeat avoidance. Best-effort:
// any storage failure degrades to "no history".
func (a *App) recentPairs(ctx context.Context) map[string]bool {
	if a.repo == nil || a.cfg.HistoryDays <= 0 {
		return nil
	}
	since := a.now().AddDate(0, 0, -a.cfg.HistoryDays)
	blocked, err := a.repo.RecentPairs(ctx, a.cfg.Channel, since)
	if err != nil {
		a.log.Warn("load pairing history failed", zap.Error(err))
		return nil
	}
	return blocked
}

// generateTopics renders the optional conversation-topics block. Any
// failure is logged and the run continues without topics.
func (a *App) generateTopics(ctx context.Context) string {
	if a.topics == nil {
		return ""
	}
	list, err := a.topics.Generate(ctx)
	if err != nil {
		a.log.Warn("topic generation failed", zap.Error(err))
		return ""
	}
	return topics.FormatTopics(list)
}

// fail records a failed run and sends a best-effort direct message to the
// error recipient. A failed notification is logged, never re-raised.
func (a *App) fail(ctx context.Context, reason string, err error) {
	a.log.Error("pairing run failed", zap.String("reason", reason), zap.Error(err))

	if a.cfg.ErrorRecipient == "" {
		return
	}
	notice := domain.FormatErrorNotice(reason, err, a.now())
	if nerr := a.messenger.SendDirectMessage(ctx, a.cfg.ErrorRecipient, notice); nerr != nil {
		a.log.Error("error notification failed",
			zap.String("recipient", a.cfg.ErrorRecipient),
			zap.Error(nerr),
		)
		return
	}
	a.log.Info("error notification sent", zap.String("recipient", a.cfg.ErrorRecipient))
}
