package testforms

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// duplicateProbeCount bounds how many accepted payloads get re-posted to
// confirm the idempotency guard.
const duplicateProbeCount = 10

// waitForDelivery polls the submission status endpoint until every accepted
// payload reports delivered or the timeout elapses.
func waitForDelivery(ctx context.Context, config *Config, subs []Submission, stats *Stats) error {
	log.Println("⏳ Waiting for queued submissions to be delivered...")

	client := newHTTPClient(config.Timeout)

	pending := make(map[string]bool)
	for _, sub := range subs {
		if sub.ExpectValid {
			pending[sub.SubmissionID] = true
		}
	}

	deadline := time.Now().Add(DeliveryWaitTimeout)
	delivered := 0

	for len(pending) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for delivery: %w", ctx.Err())
		default:
		}

		for id := range pending {
			resp, err := client.Get(config.BaseURL + "/submissions/" + id)
			if err != nil {
				continue
			}
			body, err := readResponseBody(resp)
			if err != nil || resp.StatusCode != StatusOK {
				continue
			}

			var status StatusResponse
			if err := json.Unmarshal(body, &status); err != nil {
				continue
			}
			if status.Status == "delivered" {
				delivered++
				delete(pending, id)
			}
		}

		if len(pending) > 0 {
			time.Sleep(DeliveryPollInterval)
		}
	}

	stats.SubmissionsDelivered = delivered

	if len(pending) > 0 {
		log.Printf("⚠️  %d submissions still undelivered after %s", len(pending), DeliveryWaitTimeout)
	} else {
		log.Printf("✅ All %d accepted submissions delivered", delivered)
	}

	return nil
}

// verifyDuplicates re-posts a handful of already-accepted payloads and
// expects every one of them to be answered as a duplicate.
func verifyDuplicates(ctx context.Context, config *Config, subs []Submission) error {
	log.Println("🔍 Verifying duplicate detection...")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/contact"

	probes := 0
	failures := 0
	for _, sub := range subs {
		if probes >= duplicateProbeCount {
			break
		}
		if !sub.ExpectValid {
			continue
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during duplicate verification: %w", ctx.Err())
		default:
		}

		probes++
		if result := submitSingleSubmission(client, url, sub); result != "duplicate" {
			failures++
			log.Printf("⚠️  Re-posted submission %s was answered as %q, expected duplicate", sub.SubmissionID, result)
		}
	}

	if failures == 0 {
		log.Printf("✅ Duplicate detection verified on %d re-posted payloads", probes)
	} else {
		log.Printf("⚠️  Duplicate detection failed for %d of %d probes", failures, probes)
	}

	return nil
}

// verifyRecentList sanity-checks the recent submissions listing.
func verifyRecentList(ctx context.Context, config *Config) error {
	log.Println("🔍 Verifying recent submissions listing...")

	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(config.BaseURL + "/submissions?limit=20")
	if err != nil {
		return fmt.Errorf("failed to fetch recent submissions: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read recent submissions: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("recent submissions returned status %d", resp.StatusCode)
	}

	var list []StatusResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("failed to parse recent submissions: %w", err)
	}

	// Newest first
	for i := 1; i < len(list); i++ {
		if list[i].ReceivedAt > list[i-1].ReceivedAt {
			log.Printf("⚠️  Recent list not ordered newest first at index %d", i)
			break
		}
	}

	log.Printf("✅ Recent listing returned %d entries", len(list))
	return nil
}
