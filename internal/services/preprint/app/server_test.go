package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openpreview/preprint.review/internal/services/preprint/domain"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	dbPath := t.TempDir() + "/preprint.db"
	t.Setenv("PREPRINT_REVIEW_PREPRINT_DB_PATH", dbPath)

	srv, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})
	return srv
}

func allYes() map[string]string {
	answers := make(map[string]string, len(domain.Questions()))
	for _, question := range domain.Questions() {
		answers[string(question)] = "yes"
	}
	return answers
}

func TestServer_PreprintLifecycleAgainstSQLiteStore(t *testing.T) {
	srv := startTestServer(t)
	svc := srv.Domain()
	ctx := context.Background()

	preprint, err := svc.CreatePreprint(ctx, domain.CreatePreprintInput{
		Handle:  "10.1101/2026.04.02.000123",
		Title:   "Neural correlates of peer feedback",
		URL:     "https://biorxiv.org/content/10.1101/2026.04.02.000123",
		Authors: "Doe, J.",
		Server:  "biorxiv",
		License: "CC-BY-4.0",
	})
	if err != nil {
		t.Fatalf("create preprint: %v", err)
	}

	if _, err := svc.CreatePreprint(ctx, domain.CreatePreprintInput{
		Handle: "10.1101/2026.04.02.000123",
		Title:  "Duplicate handle",
	}); !errors.Is(err, domain.ErrHandleConflict) {
		t.Fatalf("expected ErrHandleConflict, got %v", err)
	}

	request, err := svc.CreateRequest(ctx, domain.CreateRequestInput{
		PreprintID:      preprint.ID,
		AuthorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	requests, err := svc.ListRequestsByPreprint(ctx, preprint.ID)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != request.ID {
		t.Fatalf("unexpected requests: %+v", requests)
	}

	rapid, err := svc.CreateRapidReview(ctx, domain.CreateRapidReviewInput{
		PreprintID:      preprint.ID,
		AuthorPersonaID: "persona-2",
		Answers:         allYes(),
	})
	if err != nil {
		t.Fatalf("create rapid review: %v", err)
	}
	flagged, err := svc.SetRapidReviewFlag(ctx, domain.SetRapidReviewFlagInput{
		PreprintID:    preprint.ID,
		RapidReviewID: rapid.ID,
		Flagged:       true,
		Capability:    domain.Capability{PersonaID: "persona-3", Moderation: true},
	})
	if err != nil {
		t.Fatalf("flag rapid review: %v", err)
	}
	if !flagged.IsFlagged || !flagged.IsPublished {
		t.Fatalf("unexpected rapid review after flag: %+v", flagged)
	}
	if flagged.Answers[domain.QuestionNovel] != domain.AnswerYes {
		t.Fatalf("answers changed by flag: %+v", flagged.Answers)
	}

	if _, err := svc.AddTag(ctx, domain.AddTagInput{PreprintID: preprint.ID, Name: "Neuroscience"}); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	tags, err := svc.ListTags(ctx, preprint.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "neuroscience" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
}
