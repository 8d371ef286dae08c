package tone

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/balei-miktzoa/draftgen/internal/model"
	"github.com/balei-miktzoa/draftgen/pkg/llm"
)

// Cache defaults, overridable through DescriberOption.
const (
	DefaultCacheTTL        = 15 * time.Minute
	DefaultCacheMaxEntries = 128
)

// Description is the full multi-tone output for one worker.
type Description struct {
	Styles     map[string]Styled `json:"styles"`
	UsedFields map[string]any    `json:"used_fields"`
}

type cacheEntry struct {
	at   time.Time
	data Description
}

// Describer generates multi-tone worker descriptions with a TTL cache in
// front and request coalescing for concurrent misses on the same worker.
type Describer struct {
	client  llm.Client
	ttl     time.Duration
	max     int
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// DescriberOption configures a Describer.
type DescriberOption func(*Describer)

// WithCacheTTL overrides the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) DescriberOption {
	return func(d *Describer) { d.ttl = ttl }
}

// WithCacheMax overrides the cache capacity.
func WithCacheMax(n int) DescriberOption {
	return func(d *Describer) { d.max = n }
}

// WithLLMTimeout bounds each model call.
func WithLLMTimeout(timeout time.Duration) DescriberOption {
	return func(d *Describer) { d.timeout = timeout }
}

// NewDescriber creates a Describer. client may be nil, in which case every
// request takes the deterministic fallback path.
func NewDescriber(client llm.Client, opts ...DescriberOption) *Describer {
	d := &Describer{
		client:  client,
		ttl:     DefaultCacheTTL,
		max:     DefaultCacheMaxEntries,
		timeout: DefaultLLMTimeout,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fingerprint hashes the fields that influence the description, so an edit
// to any of them invalidates the cached copy.
func Fingerprint(w model.WorkerRecord) string {
	payload := map[string]any{}
	put := func(key, val string) {
		if val != "" {
			payload[key] = val
		}
	}
	put("worker_id", w.WorkerID)
	put("id", w.ID)
	put("updated_at", w.UpdatedAt)
	put("ai_updated_at", w.AIUpdatedAt)
	put("name", w.Name)
	put("company_name", w.CompanyName)
	put("field", w.Field)
	put("field_display", w.FieldDisplay)
	put("city", w.City)
	put("base_city", w.BaseCity)
	put("about_clean", w.AboutClean)
	put("about", w.About)
	put("description", w.Description)
	put("bio", w.Bio)
	put("bio_short", w.BioShort)
	if len(w.SubServices) > 0 {
		payload["sub_services"] = w.SubServices
	}
	if len(w.ServicesList) > 0 {
		payload["services_list"] = w.ServicesList
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		serialized = []byte(w.ResolvedID())
	}
	sum := sha1.Sum(serialized)
	return hex.EncodeToString(sum[:])
}

// Describe returns the three tone renditions for a worker, served from cache
// when fresh. It never returns an error: any failure downgrades to the
// deterministic fallback copy.
func (d *Describer) Describe(ctx context.Context, w model.WorkerRecord) Description {
	key := Fingerprint(w)

	d.mu.Lock()
	if entry, ok := d.cache[key]; ok && d.now().Sub(entry.at) < d.ttl {
		d.mu.Unlock()
		return entry.data
	}
	d.mu.Unlock()

	v, _, _ := d.group.Do(key, func() (any, error) {
		data := d.generate(ctx, w)
		d.store(key, data)
		return data, nil
	})
	return v.(Description)
}

func (d *Describer) generate(ctx context.Context, w model.WorkerRecord) Description {
	wc := CollectContext(w)

	if d.client == nil {
		return Description{
			Styles:     FallbackStyles(wc, "fallback"),
			UsedFields: wc.UsedFields(),
		}
	}

	raw, err := callLLM(ctx, d.client, wc, d.timeout)
	if err != nil {
		zap.L().Warn("model unavailable, using fallback copy",
			zap.String("worker_id", w.ResolvedID()),
			zap.Error(err))
		return Description{
			Styles:     FallbackStyles(wc, "fallback"),
			UsedFields: wc.UsedFields(),
		}
	}

	return Description{
		Styles:     normalizeLLMOutput(raw, wc),
		UsedFields: wc.UsedFields(),
	}
}

func (d *Describer) store(key string, data Description) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache[key] = cacheEntry{at: d.now(), data: data}
	if len(d.cache) <= d.max {
		return
	}

	// Evict the oldest entry.
	var oldestKey string
	var oldestAt time.Time
	for k, e := range d.cache {
		if oldestKey == "" || e.at.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.at
		}
	}
	delete(d.cache, oldestKey)
}
