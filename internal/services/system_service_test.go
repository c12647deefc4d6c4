package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/hanko-field/pricing/internal/domain"
)

type stubHealthRepository struct {
	report domain.SystemHealthReport
	err    error
}

func (s *stubHealthRepository) Collect(context.Context) (domain.SystemHealthReport, error) {
	return s.report, s.err
}

func TestSystemService_Health(t *testing.T) {
	repo := &stubHealthRepository{report: domain.SystemHealthReport{Status: domain.HealthStatusOK}}
	svc, err := NewSystemService(SystemServiceDeps{HealthRepository: repo})
	if err != nil {
		t.Fatalf("NewSystemService error: %v", err)
	}

	report, err := svc.Health(context.Background())
	if err != nil {
		t.Fatalf("Health error: %v", err)
	}
	if report.Status != domain.HealthStatusOK {
		t.Fatalf("status = %s, want ok", report.Status)
	}
}

func TestSystemService_HealthPropagatesError(t *testing.T) {
	repo := &stubHealthRepository{err: errors.New("probe failed")}
	svc, err := NewSystemService(SystemServiceDeps{HealthRepository: repo})
	if err != nil {
		t.Fatalf("NewSystemService error: %v", err)
	}
	if _, err := svc.Health(context.Background()); err == nil {
		t.Fatalf("expected error from health repository")
	}
}

func TestSystemService_BuildDefaultsStartedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewSystemService(SystemServiceDeps{
		HealthRepository: &stubHealthRepository{},
		Clock:            func() time.Time { return now },
		Build:            BuildInfo{Version: "1.2.3"},
	})
	if err != nil {
		t.Fatalf("NewSystemService error: %v", err)
	}
	build := svc.Build()
	if build.Version != "1.2.3" || !build.StartedAt.Equal(now) {
		t.Fatalf("build = %+v", build)
	}
}

func TestSystemService_RequiresHealthRepository(t *testing.T) {
	if _, err := NewSystemService(SystemServiceDeps{}); err == nil {
		t.Fatalf("expected constructor error")
	}
}
