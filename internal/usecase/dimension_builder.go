package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/entity"
	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
	"github.com/riskibarqy/sports-warehouse/internal/domain/rejection"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

type DimensionBuilderConfig struct {
	Resolver         entity.ResolverConfig
	Normalization    entity.NormalizationRules
	DateLayouts      []string
	FillDateRange    bool
	SeasonStartMonth time.Month
}

func DefaultDimensionBuilderConfig() DimensionBuilderConfig {
	return DimensionBuilderConfig{
		Resolver:         entity.DefaultResolverConfig(),
		Normalization:    entity.DefaultNormalizationRules(),
		DateLayouts:      dimension.DayFirstLayouts(),
		FillDateRange:    true,
		SeasonStartMonth: time.July,
	}
}

// ResolvedRecord is a raw record with every surrogate key it joins to. Zero means absent.
type ResolvedRecord struct {
	Record         feed.Record
	DateKey        int
	TeamKey        int64
	PlayerKey      int64
	CompetitionKey int64
	MatchKey       int64
}

type BuildResult struct {
	Resolved   []ResolvedRecord
	Tables     dimension.Tables
	Rejections []rejection.Record
	Processed  int
	Ambiguous  int
}

type teamDay struct {
	teamKey int64
	dateKey int
}

type fixtureDay struct {
	homeKey int64
	awayKey int64
	dateKey int
}

// DimensionBuilder owns every surrogate key of one run. Create it at run start and drop it
// at run end; nothing else mints keys.
type DimensionBuilder struct {
	cfg        DimensionBuilderConfig
	logger     *logging.Logger
	normalizer *entity.Normalizer
	validate   *validator.Validate
	dates      *dimension.DateParser

	teams        *entity.Resolver
	players      *entity.Resolver
	competitions *entity.Resolver

	dateRows map[int]dimension.DateRow

	competitionKeys map[dimension.CompetitionNaturalKey]int64
	competitionRows map[int64]dimension.CompetitionRow
	nextCompetition int64

	matchKeys        map[dimension.MatchNaturalKey]int64
	matchRows        map[int64]*dimension.MatchRow
	matchesByTeamDay map[teamDay][]int64
	matchesByFixture map[fixtureDay][]int64
	nextMatch        int64
}

func NewDimensionBuilder(cfg DimensionBuilderConfig, logger *logging.Logger) *DimensionBuilder {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SeasonStartMonth < time.January || cfg.SeasonStartMonth > time.December {
		cfg.SeasonStartMonth = time.July
	}

	normalizer := entity.NewNormalizer(cfg.Normalization)
	return &DimensionBuilder{
		cfg:        cfg,
		logger:     logger,
		normalizer: normalizer,
		validate:   newFeedValidator(),
		dates:      dimension.NewDateParser(cfg.DateLayouts),

		teams:        entity.NewResolver(normalizer, entity.NewRegistry(entity.TypeTeam), cfg.Resolver),
		players:      entity.NewResolver(normalizer, entity.NewRegistry(entity.TypePlayer), cfg.Resolver),
		competitions: entity.NewResolver(normalizer, entity.NewRegistry(entity.TypeCompetition), cfg.Resolver),

		dateRows: make(map[int]dimension.DateRow),

		competitionKeys: make(map[dimension.CompetitionNaturalKey]int64),
		competitionRows: make(map[int64]dimension.CompetitionRow),
		nextCompetition: 1,

		matchKeys:        make(map[dimension.MatchNaturalKey]int64),
		matchRows:        make(map[int64]*dimension.MatchRow),
		matchesByTeamDay: make(map[teamDay][]int64),
		matchesByFixture: make(map[fixtureDay][]int64),
		nextMatch:        1,
	}
}

// newFeedValidator reports fields by their first csv header name.
func newFeedValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("csv"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Seed preloads dimension rows committed by earlier runs so their keys are reused.
func (b *DimensionBuilder) Seed(ctx context.Context, reader warehouse.DimensionReader) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DimensionBuilder.Seed")
	defer span.End()

	if reader == nil {
		return nil
	}

	committed, err := reader.LoadDimensions(ctx)
	if err != nil {
		return fmt.Errorf("%w: load committed dimensions: %v", ErrDependencyUnavailable, err)
	}

	for _, team := range committed.Teams {
		item := entity.Canonical{Key: team.TeamKey, CanonicalName: team.Name, Aliases: team.Aliases}
		if err := b.teams.Registry().Seed(item, b.normalizer); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	for _, player := range committed.Players {
		item := entity.Canonical{Key: player.PlayerKey, CanonicalName: player.Name, Aliases: player.Aliases}
		if err := b.players.Registry().Seed(item, b.normalizer); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	competitions := append([]dimension.CompetitionRow(nil), committed.Competitions...)
	sort.Slice(competitions, func(i, j int) bool { return competitions[i].CompetitionKey < competitions[j].CompetitionKey })
	for _, row := range competitions {
		if _, known := b.competitions.Lookup(row.Name); !known {
			item := entity.Canonical{Key: int64(b.competitions.Registry().Len() + 1), CanonicalName: row.Name}
			if err := b.competitions.Registry().Seed(item, b.normalizer); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		b.competitionKeys[dimension.CompetitionNaturalKey{Name: row.Name, Season: row.Season}] = row.CompetitionKey
		b.competitionRows[row.CompetitionKey] = row
		if row.CompetitionKey >= b.nextCompetition {
			b.nextCompetition = row.CompetitionKey + 1
		}
	}

	matches := append([]dimension.MatchRow(nil), committed.Matches...)
	sort.Slice(matches, func(i, j int) bool { return matches[i].MatchKey < matches[j].MatchKey })
	for _, row := range matches {
		b.indexMatch(row)
		if row.MatchKey >= b.nextMatch {
			b.nextMatch = row.MatchKey + 1
		}
	}

	b.logger.InfoContext(ctx, "seeded dimensions from warehouse",
		"teams", len(committed.Teams),
		"players", len(committed.Players),
		"competitions", len(committed.Competitions),
		"matches", len(committed.Matches),
	)
	return nil
}

type pendingRecord struct {
	record   feed.Record
	identity feed.Identity
	date     time.Time
	dateKey  int
	home     string
	away     string
	label    dimension.MatchLabel
}

type nameResolution struct {
	field string
	key   int64
	err   error
}

// Build resolves every record against the registries and returns the dimension tables.
// Per-record failures become rejections and never stop the build.
func (b *DimensionBuilder) Build(ctx context.Context, records []feed.Record) BuildResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.DimensionBuilder.Build")
	defer span.End()

	result := BuildResult{Processed: len(records)}
	pending := make([]pendingRecord, 0, len(records))

	for _, record := range records {
		p, rejected := b.prepare(ctx, record)
		if rejected != nil {
			result.Rejections = append(result.Rejections, *rejected)
			continue
		}
		b.addDate(p.date)
		pending = append(pending, p)
	}

	teams, homes, aways, players, competitions := b.resolveNames(pending)

	matchLabels := make([]string, 0, len(pending))
	for i, p := range pending {
		names := []nameResolution{teams[i], homes[i], aways[i], players[i], competitions[i]}
		if rejected := b.nameRejection(p, names); rejected != nil {
			result.Rejections = append(result.Rejections, *rejected)
			if rejected.Reason == rejection.ReasonResolutionAmbiguity {
				result.Ambiguous++
			}
			continue
		}

		resolved := ResolvedRecord{
			Record:    p.record,
			DateKey:   p.dateKey,
			TeamKey:   teams[i].key,
			PlayerKey: players[i].key,
		}
		if competitions[i].key != 0 {
			resolved.CompetitionKey = b.competitionKey(competitions[i].key, p)
		}

		if p.record.Kind == feed.KindMatchInfo {
			if homes[i].key == aways[i].key {
				result.Rejections = append(result.Rejections, rejectRecord(p.record, rejection.ReasonMissingField, "away_team",
					fmt.Sprintf("home %q and away %q resolve to the same team", p.home, p.away)))
				continue
			}
			resolved.MatchKey = b.matchKey(homes[i].key, aways[i].key, p, resolved.CompetitionKey)
			b.recordScore(resolved.MatchKey, resolved.TeamKey, p.record.Row)
		}

		result.Resolved = append(result.Resolved, resolved)
		matchLabels = append(matchLabels, p.identity.Match)
	}

	// Match-info rows may come after the rows that reference them, so link in a second pass.
	for i := range result.Resolved {
		resolved := &result.Resolved[i]
		kind := resolved.Record.Kind
		if kind == feed.KindMatchInfo || kind == feed.KindGPSTraining {
			continue
		}
		resolved.MatchKey = b.lookupMatch(matchLabels[i], resolved.TeamKey, resolved.DateKey)
		if resolved.CompetitionKey == 0 && resolved.MatchKey != 0 {
			resolved.CompetitionKey = b.matchRows[resolved.MatchKey].CompetitionKey
		}
	}

	if b.cfg.FillDateRange {
		b.fillDateRange()
	}
	result.Tables = b.tables()

	b.logger.InfoContext(ctx, "dimensions built",
		"processed", result.Processed,
		"resolved", len(result.Resolved),
		"rejected", len(result.Rejections),
		"ambiguous", result.Ambiguous,
		"dates", len(result.Tables.Dates),
		"teams", len(result.Tables.Teams),
		"players", len(result.Tables.Players),
		"competitions", len(result.Tables.Competitions),
		"matches", len(result.Tables.Matches),
	)
	return result
}

func (b *DimensionBuilder) prepare(ctx context.Context, record feed.Record) (pendingRecord, *rejection.Record) {
	if record.Err != nil {
		field := ""
		var parseErr *feed.ParseError
		if errors.As(record.Err, &parseErr) {
			field = parseErr.Field
		}
		rejected := rejectRecord(record, rejection.ReasonParseError, field, record.Err.Error())
		return pendingRecord{}, &rejected
	}
	if record.Row == nil {
		rejected := rejectRecord(record, rejection.ReasonMissingField, "", "record carries no row")
		return pendingRecord{}, &rejected
	}

	if err := b.validate.StructCtx(ctx, record.Row); err != nil {
		field := ""
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			field = validationErrs[0].Field()
		}
		rejected := rejectRecord(record, rejection.ReasonMissingField, field, fmt.Sprintf("required field %s is empty", field))
		return pendingRecord{}, &rejected
	}

	identity := record.Row.Identity()
	date, err := b.dates.Parse(identity.Date)
	if err != nil {
		rejected := rejectRecord(record, rejection.ReasonParseError, "date", err.Error())
		return pendingRecord{}, &rejected
	}

	p := pendingRecord{
		record:   record,
		identity: identity,
		date:     date,
		dateKey:  dimension.DateKey(date),
	}
	if record.Kind == feed.KindMatchInfo {
		p.home = strings.TrimSpace(identity.HomeTeam)
		p.away = strings.TrimSpace(identity.AwayTeam)
		if label, ok := dimension.ParseMatchLabel(identity.Match); ok {
			p.label = label
			if p.home == "" {
				p.home = label.Home
			}
			if p.away == "" {
				p.away = label.Away
			}
		}
		if p.home == "" || p.away == "" {
			rejected := rejectRecord(record, rejection.ReasonMissingField, "home_team",
				fmt.Sprintf("match %q names no home and away team", identity.Match))
			return pendingRecord{}, &rejected
		}
	}
	return p, nil
}

// resolveNames runs one goroutine per entity type. Within a type, names resolve in feed
// order so key assignment is deterministic.
func (b *DimensionBuilder) resolveNames(pending []pendingRecord) (teams, homes, aways, players, competitions []nameResolution) {
	teams = make([]nameResolution, len(pending))
	homes = make([]nameResolution, len(pending))
	aways = make([]nameResolution, len(pending))
	players = make([]nameResolution, len(pending))
	competitions = make([]nameResolution, len(pending))

	var wg conc.WaitGroup
	wg.Go(func() {
		for i, p := range pending {
			teams[i] = resolveName(b.teams, "team_name", p.identity.Team)
			if p.record.Kind == feed.KindMatchInfo {
				homes[i] = resolveName(b.teams, "home_team", p.home)
				aways[i] = resolveName(b.teams, "away_team", p.away)
			}
		}
	})
	wg.Go(func() {
		for i, p := range pending {
			if p.record.Kind != feed.KindMatchInfo {
				players[i] = resolveName(b.players, "player", p.identity.Player)
			}
		}
	})
	wg.Go(func() {
		for i, p := range pending {
			if strings.TrimSpace(p.identity.Competition) != "" {
				competitions[i] = resolveName(b.competitions, "competition", p.identity.Competition)
			}
		}
	})
	wg.Wait()

	return teams, homes, aways, players, competitions
}

func resolveName(resolver *entity.Resolver, field, raw string) nameResolution {
	resolution, err := resolver.Resolve(raw)
	return nameResolution{field: field, key: resolution.Key, err: err}
}

func (b *DimensionBuilder) nameRejection(p pendingRecord, names []nameResolution) *rejection.Record {
	for _, name := range names {
		if name.err == nil {
			continue
		}

		var ambiguity *entity.AmbiguityError
		if errors.As(name.err, &ambiguity) {
			rejected := rejectRecord(p.record, rejection.ReasonResolutionAmbiguity, name.field, name.err.Error())
			rejected.EntityType = string(ambiguity.Type)
			rejected.RawName = ambiguity.Raw
			rejected.CandidateKey = ambiguity.CandidateKey
			rejected.CandidateName = ambiguity.CandidateName
			rejected.Score = ambiguity.Score
			b.logger.Warn("name flagged for review",
				"feed", p.record.Kind,
				"line", p.record.Line,
				"entity_type", ambiguity.Type,
				"raw_name", ambiguity.Raw,
				"candidate", ambiguity.CandidateName,
				"score", ambiguity.Score,
			)
			return &rejected
		}

		rejected := rejectRecord(p.record, rejection.ReasonMissingField, name.field, name.err.Error())
		return &rejected
	}
	return nil
}

func rejectRecord(record feed.Record, reason rejection.Reason, field, detail string) rejection.Record {
	return rejection.Record{
		Feed:   record.Kind,
		Line:   record.Line,
		Reason: reason,
		Field:  field,
		Detail: detail,
	}
}

func (b *DimensionBuilder) addDate(date time.Time) {
	row := dimension.NewDateRow(date)
	b.dateRows[row.DateKey] = row
}

func (b *DimensionBuilder) fillDateRange() {
	if len(b.dateRows) == 0 {
		return
	}
	var first, last time.Time
	for _, row := range b.dateRows {
		if first.IsZero() || row.CalendarDate.Before(first) {
			first = row.CalendarDate
		}
		if last.IsZero() || row.CalendarDate.After(last) {
			last = row.CalendarDate
		}
	}
	for _, row := range dimension.DateRange(first, last) {
		b.dateRows[row.DateKey] = row
	}
}

// competitionKey returns the dimension key for (canonical competition, season).
func (b *DimensionBuilder) competitionKey(entityKey int64, p pendingRecord) int64 {
	canonical, ok := b.competitions.Registry().Get(entityKey)
	if !ok {
		return 0
	}
	season := strings.TrimSpace(p.identity.Season)
	if season == "" {
		season = dimension.SeasonFor(p.date, b.cfg.SeasonStartMonth)
	}

	natural := dimension.CompetitionNaturalKey{Name: canonical.CanonicalName, Season: season}
	if key, ok := b.competitionKeys[natural]; ok {
		return key
	}
	key := b.nextCompetition
	b.nextCompetition++
	b.competitionKeys[natural] = key
	b.competitionRows[key] = dimension.CompetitionRow{CompetitionKey: key, Name: natural.Name, Season: natural.Season}
	return key
}

func (b *DimensionBuilder) matchKey(homeKey, awayKey int64, p pendingRecord, competitionKey int64) int64 {
	natural := dimension.MatchNaturalKey{
		HomeTeamKey:    homeKey,
		AwayTeamKey:    awayKey,
		DateKey:        p.dateKey,
		CompetitionKey: competitionKey,
	}
	if key, ok := b.matchKeys[natural]; ok {
		row := b.matchRows[key]
		if row.Label == "" {
			row.Label = strings.TrimSpace(p.identity.Match)
		}
		if row.HomeScore == nil && p.label.HomeScore != nil {
			row.HomeScore, row.AwayScore = p.label.HomeScore, p.label.AwayScore
		}
		return key
	}

	key := b.nextMatch
	b.nextMatch++
	b.indexMatch(dimension.MatchRow{
		MatchKey:       key,
		HomeTeamKey:    homeKey,
		AwayTeamKey:    awayKey,
		DateKey:        p.dateKey,
		CompetitionKey: competitionKey,
		Label:          strings.TrimSpace(p.identity.Match),
		HomeScore:      p.label.HomeScore,
		AwayScore:      p.label.AwayScore,
	})
	return key
}

func (b *DimensionBuilder) indexMatch(row dimension.MatchRow) {
	stored := row
	b.matchRows[row.MatchKey] = &stored
	b.matchKeys[row.NaturalKey()] = row.MatchKey

	for _, teamKey := range []int64{row.HomeTeamKey, row.AwayTeamKey} {
		day := teamDay{teamKey: teamKey, dateKey: row.DateKey}
		b.matchesByTeamDay[day] = append(b.matchesByTeamDay[day], row.MatchKey)
	}
	fixture := fixtureDay{homeKey: row.HomeTeamKey, awayKey: row.AwayTeamKey, dateKey: row.DateKey}
	b.matchesByFixture[fixture] = append(b.matchesByFixture[fixture], row.MatchKey)
}

// recordScore fills a missing score from a side's goals column.
func (b *DimensionBuilder) recordScore(matchKey, teamKey int64, row feed.Row) {
	info, ok := row.(*feed.MatchInfoRow)
	if !ok || info.Goals == nil {
		return
	}
	match := b.matchRows[matchKey]
	goals := int(*info.Goals)
	switch teamKey {
	case match.HomeTeamKey:
		if match.HomeScore == nil {
			match.HomeScore = &goals
		}
	case match.AwayTeamKey:
		if match.AwayScore == nil {
			match.AwayScore = &goals
		}
	}
}

// lookupMatch prefers the fixture named by label, then the team's only match that day.
func (b *DimensionBuilder) lookupMatch(label string, teamKey int64, dateKey int) int64 {
	if parsed, ok := dimension.ParseMatchLabel(label); ok {
		homeKey, homeKnown := b.teams.Lookup(parsed.Home)
		awayKey, awayKnown := b.teams.Lookup(parsed.Away)
		if homeKnown && awayKnown {
			if keys := b.matchesByFixture[fixtureDay{homeKey: homeKey, awayKey: awayKey, dateKey: dateKey}]; len(keys) > 0 {
				return keys[0]
			}
		}
	}

	keys := b.matchesByTeamDay[teamDay{teamKey: teamKey, dateKey: dateKey}]
	if len(keys) == 0 {
		return 0
	}
	return keys[0]
}

func (b *DimensionBuilder) tables() dimension.Tables {
	var out dimension.Tables

	out.Dates = make([]dimension.DateRow, 0, len(b.dateRows))
	for _, row := range b.dateRows {
		out.Dates = append(out.Dates, row)
	}
	sort.Slice(out.Dates, func(i, j int) bool { return out.Dates[i].DateKey < out.Dates[j].DateKey })

	for _, team := range b.teams.Registry().Entities() {
		out.Teams = append(out.Teams, dimension.TeamRow{TeamKey: team.Key, Name: team.CanonicalName, Aliases: team.Aliases})
	}
	for _, player := range b.players.Registry().Entities() {
		out.Players = append(out.Players, dimension.PlayerRow{PlayerKey: player.Key, Name: player.CanonicalName, Aliases: player.Aliases})
	}

	out.Competitions = make([]dimension.CompetitionRow, 0, len(b.competitionRows))
	for _, row := range b.competitionRows {
		out.Competitions = append(out.Competitions, row)
	}
	sort.Slice(out.Competitions, func(i, j int) bool {
		return out.Competitions[i].CompetitionKey < out.Competitions[j].CompetitionKey
	})

	out.Matches = make([]dimension.MatchRow, 0, len(b.matchRows))
	for _, row := range b.matchRows {
		out.Matches = append(out.Matches, *row)
	}
	sort.Slice(out.Matches, func(i, j int) bool { return out.Matches[i].MatchKey < out.Matches[j].MatchKey })

	return out
}
