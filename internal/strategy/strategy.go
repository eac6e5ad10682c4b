/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package strategy picks how an issue's complexity weight and category are read.
// Jira issues carry these in different custom fields depending on when the
// project's schema was migrated; Resolve inspects which fields are populated.
package strategy

import (
    "strings"

    "github.com/HamedShams/team-pulse/internal/domain"
)

type Category int

const (
    Product Category = iota
    TechDebt
)

func (c Category) String() string {
    if c == Product { return "product" }
    return "tech_debt"
}

var labelWeights = map[string]float64{
    "Very Low": 1.5,
    "Low":      2,
    "Medium":   4,
    "High":     8,
}

var optionWeights = map[string]float64{
    "10650": 1.5,
    "10651": 2,
    "10652": 4,
    "10653": 8,
}

const defaultWeight = 1.5

type WeightStrategy interface {
    Name() string
    Weight(issue domain.RawIssue) float64
}

type CategoryStrategy interface {
    Name() string
    Category(issue domain.RawIssue) Category
}

// v3Weight sums every selected multi-select label; unknown labels add nothing.
type v3Weight struct{}

func (v3Weight) Name() string { return "v3" }
func (v3Weight) Weight(issue domain.RawIssue) float64 {
    var sum float64
    for _, label := range issue.ComplexityV3 {
        sum += labelWeights[strings.TrimSpace(label)]
    }
    return sum
}

type v2Weight struct{}

func (v2Weight) Name() string { return "v2" }
func (v2Weight) Weight(issue domain.RawIssue) float64 {
    if issue.ComplexityV2 == nil { return defaultWeight }
    if w, ok := labelWeights[strings.TrimSpace(*issue.ComplexityV2)]; ok { return w }
    return defaultWeight
}

type v1Weight struct{}

func (v1Weight) Name() string { return "v1" }
func (v1Weight) Weight(issue domain.RawIssue) float64 {
    if issue.ComplexityV1 == nil { return defaultWeight }
    if w, ok := optionWeights[strings.TrimSpace(*issue.ComplexityV1)]; ok { return w }
    return defaultWeight
}

type v2Category struct{}

func (v2Category) Name() string { return "v2" }
func (v2Category) Category(issue domain.RawIssue) Category {
    if issue.SPTypeV2 != nil && *issue.SPTypeV2 == "Product" { return Product }
    return TechDebt
}

type legacyCategory struct{}

func (legacyCategory) Name() string { return "legacy" }
func (legacyCategory) Category(issue domain.RawIssue) Category {
    if issue.SPType != nil && *issue.SPType == "SP Product" { return Product }
    return TechDebt
}

type Strategies struct {
    Weight   WeightStrategy
    Category CategoryStrategy
}

// Resolve is a pure function of the issue's populated fields.
// Weight priority: non-empty v3 multi-select, then v2 single-select, then v1 option id.
func Resolve(issue domain.RawIssue) Strategies {
    var s Strategies
    switch {
    case len(issue.ComplexityV3) > 0:
        s.Weight = v3Weight{}
    case issue.ComplexityV2 != nil:
        s.Weight = v2Weight{}
    default:
        s.Weight = v1Weight{}
    }
    if issue.SPTypeV2 != nil {
        s.Category = v2Category{}
    } else {
        s.Category = legacyCategory{}
    }
    return s
}
