package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store holds both tables, immutable once constructed. Parcel lookup
// is by normalized identifier; duplicate keys keep the first row.
type Store struct {
	parcels []Parcel
	streets []Street
	byNorm  map[string]int

	parcelsCRS string
	streetsCRS string
}

// New builds a store from already-loaded rows. Used by Load and by
// tests that construct synthetic datasets.
func New(parcels []Parcel, streets []Street) *Store {
	byNorm := make(map[string]int, len(parcels))
	for i := range parcels {
		if _, exists := byNorm[parcels[i].NormID]; !exists {
			byNorm[parcels[i].NormID] = i
		}
	}
	return &Store{parcels: parcels, streets: streets, byNorm: byNorm}
}

// Load reads both shapefiles concurrently and builds the store. Any
// load failure is returned so the caller can abort startup rather
// than serve a partial dataset.
func Load(ctx context.Context, parcelsPath, streetsPath string) (*Store, error) {
	var (
		parcels    []Parcel
		streets    []Street
		parcelsCRS string
		streetsCRS string
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parcels, parcelsCRS, err = loadParcels(parcelsPath)
		return err
	})
	g.Go(func() error {
		var err error
		streets, streetsCRS, err = loadStreets(streetsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "dataset: load")
	}

	zap.L().Info("datasets loaded",
		zap.Int("parcels", len(parcels)),
		zap.Int("streets", len(streets)),
	)

	s := New(parcels, streets)
	s.parcelsCRS = parcelsCRS
	s.streetsCRS = streetsCRS
	return s, nil
}

// FindParcel looks up a parcel by its normalized identifier.
func (s *Store) FindParcel(normID string) (*Parcel, bool) {
	i, ok := s.byNorm[normID]
	if !ok {
		return nil, false
	}
	return &s.parcels[i], true
}

// Parcels returns the parcel table. Callers must treat it as
// read-only.
func (s *Store) Parcels() []Parcel { return s.parcels }

// Streets returns the street table. Callers must treat it as
// read-only.
func (s *Store) Streets() []Street { return s.streets }

// ParcelCount returns the number of loaded parcels.
func (s *Store) ParcelCount() int { return len(s.parcels) }

// StreetCount returns the number of loaded street rows.
func (s *Store) StreetCount() int { return len(s.streets) }

// ParcelsCRS returns the parcel dataset's projection string, if the
// shapefile shipped a .prj sidecar.
func (s *Store) ParcelsCRS() string { return s.parcelsCRS }

// StreetsCRS returns the street dataset's projection string.
func (s *Store) StreetsCRS() string { return s.streetsCRS }
