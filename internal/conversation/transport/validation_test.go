package transport

import (
	"testing"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/platform/validator"
)

func ptr(s string) *string { return &s }

func TestOverrideFactsRequestValidation(t *testing.T) {
	val := validator.New()
	if err := RegisterValidators(val); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name  string
		req   OverrideFactsRequest
		valid bool
	}{
		{"empty", OverrideFactsRequest{}, true},
		{"known buckets", OverrideFactsRequest{
			BudgetRange: ptr(domain.BudgetMedium),
			Timeline:    ptr(domain.TimelineUrgent),
			CompanySize: ptr(domain.CompanySizeEnterprise),
			Industry:    ptr(domain.IndustryRetail),
		}, true},
		{"service", OverrideFactsRequest{RecommendedService: ptr(domain.ServiceCloudDevOps)}, true},
		{"unknown budget", OverrideFactsRequest{BudgetRange: ptr("huge")}, false},
		{"unknown service", OverrideFactsRequest{RecommendedService: ptr("Catering")}, false},
		{"bad email", OverrideFactsRequest{Email: ptr("not-an-email")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := val.Struct(tt.req)
			if tt.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestListSessionsQueryValidation(t *testing.T) {
	val := validator.New()
	if err := RegisterValidators(val); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := val.Struct(ListSessionsQuery{Status: "active", Limit: 20}); err != nil {
		t.Fatalf("expected valid query, got %v", err)
	}
	if err := val.Struct(ListSessionsQuery{Status: "archived"}); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}
