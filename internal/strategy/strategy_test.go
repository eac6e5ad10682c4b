package strategy

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/HamedShams/team-pulse/internal/domain"
)

func ptr(s string) *string { return &s }

func TestResolve_WeightPriority(t *testing.T) {
    tests := []struct {
        name     string
        issue    domain.RawIssue
        strategy string
        weight   float64
    }{
        {
            name:     "v3 wins over v2 and v1",
            issue:    domain.RawIssue{ComplexityV3: []string{"High", "Low"}, ComplexityV2: ptr("Medium"), ComplexityV1: ptr("10650")},
            strategy: "v3",
            weight:   10,
        },
        {
            name:     "v3 unknown labels contribute zero",
            issue:    domain.RawIssue{ComplexityV3: []string{"Very Low", "Huge", ""}},
            strategy: "v3",
            weight:   1.5,
        },
        {
            name:     "empty v3 falls through to v2",
            issue:    domain.RawIssue{ComplexityV3: []string{}, ComplexityV2: ptr("Medium"), ComplexityV1: ptr("10653")},
            strategy: "v2",
            weight:   4,
        },
        {
            name:     "v2 unmapped label defaults",
            issue:    domain.RawIssue{ComplexityV2: ptr("Extreme")},
            strategy: "v2",
            weight:   1.5,
        },
        {
            name:     "v1 option id",
            issue:    domain.RawIssue{ComplexityV1: ptr("10652")},
            strategy: "v1",
            weight:   4,
        },
        {
            name:     "v1 missing defaults",
            issue:    domain.RawIssue{},
            strategy: "v1",
            weight:   1.5,
        },
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            s := Resolve(tt.issue)
            assert.Equal(t, tt.strategy, s.Weight.Name())
            assert.InDelta(t, tt.weight, s.Weight.Weight(tt.issue), 1e-9)
        })
    }
}

func TestResolve_Category(t *testing.T) {
    tests := []struct {
        name     string
        issue    domain.RawIssue
        strategy string
        want     Category
    }{
        {"v2 product", domain.RawIssue{SPTypeV2: ptr("Product"), SPType: ptr("SP Tech Debt")}, "v2", Product},
        {"v2 anything else", domain.RawIssue{SPTypeV2: ptr("Tech Debt"), SPType: ptr("SP Product")}, "v2", TechDebt},
        {"legacy product", domain.RawIssue{SPType: ptr("SP Product")}, "legacy", Product},
        {"legacy tech debt", domain.RawIssue{SPType: ptr("SP Tech Debt")}, "legacy", TechDebt},
        {"nothing set", domain.RawIssue{}, "legacy", TechDebt},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            s := Resolve(tt.issue)
            assert.Equal(t, tt.strategy, s.Category.Name())
            assert.Equal(t, tt.want, s.Category.Category(tt.issue))
        })
    }
}
