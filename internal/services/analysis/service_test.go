package analysis

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/ingest"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
	"github.com/ternarybob/kengetal/internal/services/explain"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// memoryStorage is an in-memory interfaces.AnalysisStorage
type memoryStorage struct {
	mu       sync.Mutex
	items    map[string]*models.Analysis
	saveErr  error
	lastSave *models.Analysis
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{items: make(map[string]*models.Analysis)}
}

func (m *memoryStorage) Save(ctx context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items[a.ID] = a
	m.lastSave = a
	return nil
}

func (m *memoryStorage) Get(ctx context.Context, id string) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, interfaces.ErrAnalysisNotFound
	}
	return a, nil
}

func (m *memoryStorage) ListByProject(ctx context.Context, projectID string) ([]*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Analysis
	for _, a := range m.items {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStorage) List(ctx context.Context) ([]*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Analysis, 0, len(m.items))
	for _, a := range m.items {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStorage) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return interfaces.ErrAnalysisNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func (m *memoryStorage) Close() error { return nil }

// channelPublisher records published events
type channelPublisher struct {
	events chan interfaces.Event
}

func (p *channelPublisher) Publish(event interfaces.Event) {
	p.events <- event
}

func newTestService(gen generatorFunc, storage interfaces.AnalysisStorage, publisher interfaces.EventPublisher) *Service {
	logger := arbor.NewLogger()
	return NewService(explain.NewService(gen, time.Second, 0, logger), storage, publisher, logger)
}

func echoGenerator(ctx context.Context, prompt string) (string, error) {
	return "uitleg", nil
}

func failingGenerator(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("service unavailable")
}

func ptr(v float64) *float64 { return &v }

func TestAnalyzeFinancials_NilMetrics(t *testing.T) {
	svc := newTestService(echoGenerator, nil, nil)

	result, err := svc.AnalyzeFinancials(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidMetrics)
	assert.Nil(t, result)

	_, err = svc.CalculateRatios(nil)
	assert.ErrorIs(t, err, ErrInvalidMetrics)
}

func TestAnalyzeFinancials_FailingGeneratorStillSucceeds(t *testing.T) {
	svc := newTestService(failingGenerator, nil, nil)

	result, err := svc.AnalyzeFinancials(context.Background(), &models.FinancialData{
		Nettowinst:          ptr(80_000),
		EigenVermogen:       ptr(1_000_000),
		VlottendeActiva:     ptr(300_000),
		KortlopendeSchulden: ptr(200_000),
		TotaalActiva:        ptr(2_500_000),
	})
	require.NoError(t, err)

	require.Len(t, result.Explanations, 3)
	for _, e := range result.Explanations {
		assert.Equal(t, explain.Fallback(e.Ratio), e.Uitleg)
	}
	assert.Equal(t, models.HealthHealthy, result.Summary.OverallHealth)
}

func TestAnalyzeFinancials_EmptyData(t *testing.T) {
	svc := newTestService(echoGenerator, nil, nil)

	result, err := svc.AnalyzeFinancials(context.Background(), &models.FinancialData{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Ratios.Summary.TotalRatios)
	assert.Equal(t, models.HealthCritical, result.Summary.OverallHealth)
	assert.Equal(t, []string{finance.InsightInsufficientData}, result.Summary.KeyInsights)
	for _, e := range result.Explanations {
		assert.Equal(t, explain.InsufficientDataExplanation, e.Uitleg)
	}
}

func TestAnalyzeTable_EndToEnd(t *testing.T) {
	svc := newTestService(echoGenerator, nil, nil)

	req := &models.TableAnalysisRequest{
		Headers: []string{"Jaar", "Omzet", "Netto winst", "Eigen vermogen", "Vlottende activa", "Kortlopende schulden", "Totaal activa"},
		Rows: []models.Row{
			{"Jaar": "2023", "Omzet": "€ 900,000", "Netto winst": "70,000", "Eigen vermogen": 950000.0, "Vlottende activa": 280000.0, "Kortlopende schulden": 190000.0, "Totaal activa": 2400000.0},
			{"Jaar": "2024", "Omzet": "€ 1,000,000", "Netto winst": "80,000", "Eigen vermogen": 1000000.0, "Vlottende activa": 300000.0, "Kortlopende schulden": 200000.0, "Totaal activa": 2500000.0},
		},
	}

	out, err := svc.AnalyzeTable(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, out.AnalysisID)
	assert.Equal(t, "Netto winst", out.Mapping[finance.FieldNettowinst].Header)
	require.NotNil(t, out.Data.Omzet)
	assert.Equal(t, 1_000_000.0, *out.Data.Omzet)

	ratios := out.Result.Ratios
	assert.Equal(t, 8.0, *ratios.Rentabiliteit.Value)
	assert.Equal(t, 1.5, *ratios.Liquiditeit.Value)
	assert.Equal(t, 40.0, *ratios.Solvabiliteit.Value)
	assert.Equal(t, models.HealthHealthy, out.Result.Summary.OverallHealth)
	assert.Equal(t, "8%", out.Result.Explanations[0].Waarde)
}

func TestAnalyzeTable_InvalidRequest(t *testing.T) {
	svc := newTestService(echoGenerator, nil, nil)

	_, err := svc.AnalyzeTable(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.AnalyzeTable(context.Background(), &models.TableAnalysisRequest{Headers: []string{"Omzet"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAnalyzeTable_WithProjectStoresAndPublishes(t *testing.T) {
	storage := newMemoryStorage()
	publisher := &channelPublisher{events: make(chan interfaces.Event, 1)}
	svc := newTestService(echoGenerator, storage, publisher)

	out, err := svc.AnalyzeTable(context.Background(), &models.TableAnalysisRequest{
		ProjectID: "proj-1",
		Headers:   []string{"Omzet"},
		Rows:      []models.Row{{"Omzet": 100.0}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.AnalysisID)

	stored, err := storage.Get(context.Background(), out.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, SourceManual, stored.Source)

	select {
	case event := <-publisher.events:
		assert.Equal(t, interfaces.EventAnalysisCompleted, event.Type)
	case <-time.After(time.Second):
		t.Fatal("analysis.completed was not published")
	}
}

func TestAnalyzeUpload(t *testing.T) {
	storage := newMemoryStorage()
	publisher := &channelPublisher{events: make(chan interfaces.Event, 1)}
	svc := newTestService(failingGenerator, storage, publisher)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	csv := "Nettowinst;Eigen vermogen\n80000;1000000\n"
	analysis, err := svc.AnalyzeUpload(context.Background(), "proj-1", "resultaat.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, "proj-1", analysis.ProjectID)
	assert.Equal(t, "resultaat.csv", analysis.Source)
	assert.Equal(t, fixed, analysis.CreatedAt)
	assert.Equal(t, 8.0, *analysis.Result.Ratios.Rentabiliteit.Value)
	assert.Same(t, analysis, storage.lastSave)

	list, err := svc.ListByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	<-publisher.events
}

func TestAnalyzeUpload_Errors(t *testing.T) {
	storage := newMemoryStorage()
	svc := newTestService(echoGenerator, storage, nil)
	ctx := context.Background()

	_, err := svc.AnalyzeUpload(ctx, "", "a.csv", []byte("Omzet\n1\n"))
	assert.ErrorIs(t, err, ErrProjectRequired)

	_, err = svc.AnalyzeUpload(ctx, "proj-1", "a.csv", []byte("Omzet\n"))
	assert.ErrorIs(t, err, ingest.ErrEmptyTable)

	_, err = svc.AnalyzeUpload(ctx, "proj-1", "a.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)

	storage.saveErr = errors.New("disk full")
	_, err = svc.AnalyzeUpload(ctx, "proj-1", "a.csv", []byte("Omzet\n1\n"))
	assert.ErrorContains(t, err, "disk full")
}

func TestDelete(t *testing.T) {
	storage := newMemoryStorage()
	publisher := &channelPublisher{events: make(chan interfaces.Event, 2)}
	svc := newTestService(echoGenerator, storage, publisher)
	ctx := context.Background()

	analysis, err := svc.AnalyzeUpload(ctx, "proj-1", "a.csv", []byte("Omzet\n1\n"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, analysis.ID))
	_, err = svc.Get(ctx, analysis.ID)
	assert.ErrorIs(t, err, interfaces.ErrAnalysisNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, analysis.ID), interfaces.ErrAnalysisNotFound)

	types := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-publisher.events:
			types[e.Type] = true
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
	assert.True(t, types[interfaces.EventAnalysisDeleted])
}

func TestWithoutStorage(t *testing.T) {
	svc := newTestService(echoGenerator, nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "ana_x")
	assert.ErrorIs(t, err, interfaces.ErrAnalysisNotFound)

	list, err := svc.ListByProject(ctx, "proj-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.ListByProject(ctx, " ")
	assert.ErrorIs(t, err, ErrProjectRequired)
}
