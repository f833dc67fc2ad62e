package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/conferencia/internal/model"
)

// Import kinds.
const (
	KindChart       = "chart"
	KindPlan        = "plan"
	KindEntradas    = "entradas"
	KindSaidas      = "saidas"
	KindLancamentos = "lancamentos"
)

// Batch is the data a loader read from one file. Kind selects which payload
// field is meaningful.
type Batch struct {
	Kind      string
	Accounts  []model.Account
	Plan      *model.MappingPlan
	Direction model.Direction
	Documents []model.FiscalDocument
	Postings  []model.Posting
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	switch b.Kind {
	case KindChart:
		return len(b.Accounts)
	case KindPlan:
		if b.Plan == nil {
			return 0
		}
		return len(b.Plan.Items)
	case KindEntradas, KindSaidas:
		return len(b.Documents)
	default:
		return len(b.Postings)
	}
}

// Loader parses one kind of data file.
type Loader interface {
	Load(r io.Reader) (*Batch, error)
	Kind() string
}

// Sink persists imported batches.
type Sink interface {
	SaveAccounts(ctx context.Context, companyID int, accounts []model.Account) error
	SavePlan(ctx context.Context, plan *model.MappingPlan) error
	SaveDocuments(ctx context.Context, companyID int, dir model.Direction, docs []model.FiscalDocument) error
	SavePostings(ctx context.Context, companyID int, postings []model.Posting) error
}

// Save writes the batch to sink. Plans are global; every other kind is
// stored under companyID.
func (b *Batch) Save(ctx context.Context, sink Sink, companyID int) error {
	if b.Kind == KindPlan {
		if b.Plan == nil {
			return fmt.Errorf("importing plan: empty plan")
		}
		return sink.SavePlan(ctx, b.Plan)
	}
	if companyID <= 0 {
		return fmt.Errorf("importing %s: company id is required", b.Kind)
	}
	switch b.Kind {
	case KindChart:
		return sink.SaveAccounts(ctx, companyID, b.Accounts)
	case KindEntradas, KindSaidas:
		return sink.SaveDocuments(ctx, companyID, b.Direction, b.Documents)
	case KindLancamentos:
		return sink.SavePostings(ctx, companyID, b.Postings)
	default:
		return fmt.Errorf("importing: unknown kind %q", b.Kind)
	}
}

// Registry holds named loaders.
type Registry struct {
	loaders map[string]Loader
}

// FileInfo describes a data file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
	Kind string // empty when the name matches no registered kind
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds a loader. Panics on duplicate kind.
func (r *Registry) Register(l Loader) {
	key := strings.ToLower(l.Kind())
	if _, ok := r.loaders[key]; ok {
		panic("duplicate loader kind: " + key)
	}
	r.loaders[key] = l
}

// Get returns the loader for kind, or nil.
func (r *Registry) Get(kind string) Loader {
	return r.loaders[strings.ToLower(kind)]
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// KindOf returns the registered kind a file name starts with, or "".
// The longest matching kind wins.
func (r *Registry) KindOf(fileName string) string {
	base := strings.ToLower(filepath.Base(fileName))
	best := ""
	for k := range r.loaders {
		if strings.HasPrefix(base, k) && len(k) > len(best) {
			best = k
		}
	}
	return best
}

// LoadFile parses path with the loader for kind.
func (r *Registry) LoadFile(kind, path string) (*Batch, error) {
	l := r.Get(kind)
	if l == nil {
		return nil, fmt.Errorf("unknown import kind %q (known: %s)", kind, strings.Join(r.Kinds(), ", "))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	b, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}
	return b, nil
}

// DefaultRegistry returns a registry with all built-in loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChartLoader{})
	r.Register(&PlanLoader{})
	r.Register(&FiscalLoader{Direction: model.DirectionEntrada})
	r.Register(&FiscalLoader{Direction: model.DirectionSaida})
	r.Register(&PostingLoader{})
	return r
}

// importDir is the subdirectory for data files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

var importExts = map[string]bool{".csv": true, ".yaml": true, ".yml": true}

// Scan returns the data files in <root>/import/, tagging each with the kind
// its name starts with.
func (r *Registry) Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !importExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
			Kind: r.KindOf(e.Name()),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
