package services

import (
	"fmt"

	"vehicle-route-service/internal/domain"
)

// Per-constraint breakdown of a plan's score, mirroring the reporting
// contract of the upstream analyze endpoint: each constraint carries its
// weight, its accumulated score and one match per penalised entity.
type ScoreAnalysis struct {
	Constraints []ConstraintAnalysis `json:"constraints"`
}

type ConstraintAnalysis struct {
	Name    string            `json:"name"`
	Weight  string            `json:"weight"`
	Score   string            `json:"score"`
	Matches []ConstraintMatch `json:"matches"`
}

type ConstraintMatch struct {
	Name          string `json:"name"`
	Score         string `json:"score"`
	Justification string `json:"justification"`
}

// AnalyzePlan decomposes ScorePlan's result into its constraints. The sum of
// the constraint scores equals ScorePlan(p) level by level.
func AnalyzePlan(p *domain.RoutePlan) ScoreAnalysis {
	return ScoreAnalysis{
		Constraints: []ConstraintAnalysis{
			analyzeVehicleCapacity(p),
			analyzeUnassignedVisits(p),
			analyzeTravelTime(p),
		},
	}
}

func analyzeVehicleCapacity(p *domain.RoutePlan) ConstraintAnalysis {
	ca := ConstraintAnalysis{
		Name:    "vehicleCapacity",
		Weight:  domain.Score{Hard: -capacityPenaltyWeight}.String(),
		Matches: []ConstraintMatch{},
	}
	var total domain.Score
	for i, veh := range p.Vehicles {
		excess := p.VehicleTotalDemand(i) - veh.Capacity
		if excess <= 0 {
			continue
		}
		sc := domain.Score{Hard: -capacityPenaltyWeight * excess}
		total.Hard += sc.Hard
		ca.Matches = append(ca.Matches, ConstraintMatch{
			Name:  ca.Name,
			Score: sc.String(),
			Justification: fmt.Sprintf(
				"vehicle %s demand %d exceeds capacity %d by %d",
				veh.ID, p.VehicleTotalDemand(i), veh.Capacity, excess,
			),
		})
	}
	ca.Score = total.String()
	return ca
}

func analyzeUnassignedVisits(p *domain.RoutePlan) ConstraintAnalysis {
	ca := ConstraintAnalysis{
		Name:    "unassignedVisit",
		Weight:  domain.Score{Medium: -1}.String(),
		Matches: []ConstraintMatch{},
	}
	var total domain.Score
	for _, v := range p.Visits {
		if v.Assigned() {
			continue
		}
		sc := domain.Score{Medium: -1}
		total.Medium += sc.Medium
		ca.Matches = append(ca.Matches, ConstraintMatch{
			Name:          ca.Name,
			Score:         sc.String(),
			Justification: fmt.Sprintf("customer %d is not assigned to any vehicle", v.ID),
		})
	}
	ca.Score = total.String()
	return ca
}

func analyzeTravelTime(p *domain.RoutePlan) ConstraintAnalysis {
	ca := ConstraintAnalysis{
		Name:    "minimizeTravelTime",
		Weight:  domain.Score{Soft: -1}.String(),
		Matches: []ConstraintMatch{},
	}
	var total domain.Score
	for i, veh := range p.Vehicles {
		driving := p.VehicleTotalDrivingTimeSeconds(i)
		if driving == 0 {
			continue
		}
		sc := domain.Score{Soft: -driving}
		total.Soft += sc.Soft
		ca.Matches = append(ca.Matches, ConstraintMatch{
			Name:          ca.Name,
			Score:         sc.String(),
			Justification: fmt.Sprintf("vehicle %s drives %d seconds", veh.ID, driving),
		})
	}
	ca.Score = total.String()
	return ca
}
