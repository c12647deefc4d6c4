package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/hanko-field/pricing/internal/domain"
)

func TestDependencyHealthRepositoryAllHealthy(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "pubsub", Check: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository error: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("status = %s, want ok", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("checks = %v", report.Checks)
	}
	for name, check := range report.Checks {
		if check.Status != domain.HealthStatusOK {
			t.Fatalf("check %s status = %s", name, check.Status)
		}
	}
}

func TestDependencyHealthRepositoryDegradedDependency(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Check: func(context.Context) error { return nil }},
		{Name: "pubsub", Check: func(context.Context) error { return errors.New("connection refused") }},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository error: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("status = %s, want degraded", report.Status)
	}
	if report.Checks["pubsub"].Detail != "connection refused" {
		t.Fatalf("pubsub check = %+v", report.Checks["pubsub"])
	}
}

func TestDependencyHealthRepositoryTimeoutIsError(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{
			Name:    "firestore",
			Timeout: 10 * time.Millisecond,
			Check: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
	})
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository error: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if report.Status != domain.HealthStatusError {
		t.Fatalf("status = %s, want error", report.Status)
	}
	if report.Checks["firestore"].Detail != "timeout" {
		t.Fatalf("firestore check = %+v", report.Checks["firestore"])
	}
}

func TestNewDependencyHealthRepositoryValidation(t *testing.T) {
	if _, err := NewDependencyHealthRepository(nil); err == nil {
		t.Fatalf("expected error for empty check set")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: " "}}); err == nil {
		t.Fatalf("expected error for unnamed check")
	}
	if _, err := NewDependencyHealthRepository([]DependencyCheck{{Name: "firestore"}}); err == nil {
		t.Fatalf("expected error for missing check function")
	}
}
