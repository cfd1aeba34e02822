package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/wellfield/rigops/internal/domain"
)

// EntityKind selects what ComputeTopEntities ranks.
type EntityKind string

// Rankable entity kinds.
const (
	KindClients  EntityKind = "clients"
	KindRigs     EntityKind = "rigs"
	KindJobTypes EntityKind = "job_types"
)

// ParseEntityKind validates a kind token.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(s) {
	case KindClients, KindRigs, KindJobTypes:
		return EntityKind(s), true
	default:
		return "", false
	}
}

// ComputeTopEntities ranks entities of the given kind over the filtered
// record set. limit <= 0 returns the full ranking.
func (e *Engine) ComputeTopEntities(ctx context.Context, f domain.FilterContext, kind EntityKind, limit int) ([]domain.RankedEntity, error) {
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	records, err := e.source.JobRecords(qctx, f)
	if err != nil {
		return nil, fmt.Errorf("query job records: %w", err)
	}

	switch kind {
	case KindClients:
		qctx2, cancel2 := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel2()
		clients, clientsErr := e.source.Clients(qctx2, 0)
		if clientsErr != nil {
			return nil, fmt.Errorf("list clients: %w", clientsErr)
		}
		return RankClients(records, clients, limit), nil

	case KindRigs:
		qctx2, cancel2 := context.WithTimeout(ctx, e.queryTimeout)
		defer cancel2()
		rigs, rigsErr := e.source.ActiveRigs(qctx2)
		if rigsErr != nil {
			return nil, fmt.Errorf("list active rigs: %w", rigsErr)
		}
		return RankRigs(records, rigs, limit), nil

	case KindJobTypes:
		return RankJobTypes(records), nil

	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// Leader returns the single top entity of a ranking, if any.
func Leader(ranked []domain.RankedEntity) (domain.RankedEntity, bool) {
	if len(ranked) == 0 {
		return domain.RankedEntity{}, false
	}
	return ranked[0], true
}

// RankClients ranks clients by job count over the record set. Client names
// come from reference data; records pointing at unknown clients keep a
// synthetic name so the ranking never drops revenue.
func RankClients(records []domain.JobRecord, clients []domain.Client, limit int) []domain.RankedEntity {
	names := make(map[int64]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	byID := make(map[int64]*domain.RankedEntity)
	for i := range records {
		r := &records[i]
		entry, ok := byID[r.ClientID]
		if !ok {
			name, known := names[r.ClientID]
			if !known {
				name = "client " + strconv.FormatInt(r.ClientID, 10)
			}
			entry = &domain.RankedEntity{ID: r.ClientID, Name: name}
			byID[r.ClientID] = entry
		}
		accumulate(entry, r)
	}

	return finishRanking(byID, limit)
}

// RankRigs ranks rigs by job count over the record set.
func RankRigs(records []domain.JobRecord, rigs []domain.Rig, limit int) []domain.RankedEntity {
	names := make(map[int64]string, len(rigs))
	for _, r := range rigs {
		names[r.ID] = r.Name
	}

	byID := make(map[int64]*domain.RankedEntity)
	for i := range records {
		r := &records[i]
		entry, ok := byID[r.RigID]
		if !ok {
			name, known := names[r.RigID]
			if !known {
				name = "rig " + strconv.FormatInt(r.RigID, 10)
			}
			entry = &domain.RankedEntity{ID: r.RigID, Name: name}
			byID[r.RigID] = entry
		}
		accumulate(entry, r)
	}

	return finishRanking(byID, limit)
}

// RankJobTypes breaks the record set down by contract type. The breakdown is
// small and complete, so no limit applies.
func RankJobTypes(records []domain.JobRecord) []domain.RankedEntity {
	byType := make(map[domain.JobType]*domain.RankedEntity)
	for i := range records {
		r := &records[i]
		entry, ok := byType[r.JobType]
		if !ok {
			entry = &domain.RankedEntity{Name: string(r.JobType)}
			byType[r.JobType] = entry
		}
		accumulate(entry, r)
	}

	ranked := make([]domain.RankedEntity, 0, len(byType))
	for _, entry := range byType {
		entry.AvgProfitPerJob = div(entry.TotalProfit, float64(entry.JobCount))
		ranked = append(ranked, *entry)
	}
	sortRanking(ranked)
	return ranked
}

func accumulate(entry *domain.RankedEntity, r *domain.JobRecord) {
	entry.JobCount++
	entry.TotalRevenue += r.TotalIncome()
	entry.TotalProfit += r.NetProfit
}

func finishRanking(byID map[int64]*domain.RankedEntity, limit int) []domain.RankedEntity {
	ranked := make([]domain.RankedEntity, 0, len(byID))
	for _, entry := range byID {
		entry.AvgProfitPerJob = div(entry.TotalProfit, float64(entry.JobCount))
		ranked = append(ranked, *entry)
	}
	sortRanking(ranked)

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// sortRanking orders by job count descending with a lexical name tie-break,
// so identical counts always rank the same way across runs.
func sortRanking(ranked []domain.RankedEntity) {
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].JobCount != ranked[b].JobCount {
			return ranked[a].JobCount > ranked[b].JobCount
		}
		return ranked[a].Name < ranked[b].Name
	})
}
