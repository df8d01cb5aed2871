package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront-api/controllers/catalog"
	"storefront-api/controllers/products"
	"storefront-api/models"
	"storefront-api/slugs"
	"storefront-api/storage"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type ColorSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type VariantSpec struct {
	Color    string `yaml:"color"`
	Size     string `yaml:"size"`
	Quantity int    `yaml:"quantity"`
	Price    string `yaml:"price"`
	Discount int    `yaml:"discount"`
}

type ProductSpec struct {
	Name        string        `yaml:"name"`
	SKU         string        `yaml:"sku"`
	Description string        `yaml:"description"`
	Category    string        `yaml:"category"`
	Brand       string        `yaml:"brand"`
	Gender      string        `yaml:"gender"`
	DressStyle  string        `yaml:"dressStyle"`
	Images      []string      `yaml:"images"`
	Variants    []VariantSpec `yaml:"variants"`
}

// File is the seed document.
type File struct {
	Brands     []string      `yaml:"brands"`
	Categories []string      `yaml:"categories"`
	Colors     []ColorSpec   `yaml:"colors"`
	Sizes      []string      `yaml:"sizes"`
	Products   []ProductSpec `yaml:"products"`
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

type Stats struct {
	Created int
	Updated int
}

type seeder struct {
	db       *gorm.DB
	catalog  *catalog.Service
	products *products.Service

	brands     map[string]uint
	categories map[string]uint
	colors     map[string]uint
	sizes      map[string]uint
}

// Apply upserts everything in f. Taxonomy rows are matched by slug or name,
// products by SKU.
func Apply(ctx context.Context, db *gorm.DB, f *File) (Stats, error) {
	s := &seeder{
		db:         db,
		catalog:    catalog.NewService(db),
		products:   products.NewService(db, storage.Disabled{}),
		brands:     map[string]uint{},
		categories: map[string]uint{},
		colors:     map[string]uint{},
		sizes:      map[string]uint{},
	}
	var stats Stats

	for _, name := range f.Brands {
		var b models.Brand
		created, err := s.ensure(ctx, &b, "slug = ?", slugs.Make(name), func() error {
			out, err := s.catalog.CreateBrand(ctx, catalog.NameInput{Name: name})
			if err == nil {
				b = *out
			}
			return err
		})
		if err != nil {
			return stats, fmt.Errorf("brand %q: %w", name, err)
		}
		stats.count(created)
		s.brands[strings.ToLower(name)] = b.ID
	}
	for _, name := range f.Categories {
		var c models.Category
		created, err := s.ensure(ctx, &c, "slug = ?", slugs.Make(name), func() error {
			out, err := s.catalog.CreateCategory(ctx, catalog.NameInput{Name: name})
			if err == nil {
				c = *out
			}
			return err
		})
		if err != nil {
			return stats, fmt.Errorf("category %q: %w", name, err)
		}
		stats.count(created)
		s.categories[strings.ToLower(name)] = c.ID
	}
	for _, spec := range f.Colors {
		var c models.Color
		created, err := s.ensure(ctx, &c, "LOWER(name) = ?", strings.ToLower(spec.Name), func() error {
			out, err := s.catalog.CreateColor(ctx, catalog.ColorInput{Name: spec.Name, Value: spec.Value})
			if err == nil {
				c = *out
			}
			return err
		})
		if err != nil {
			return stats, fmt.Errorf("color %q: %w", spec.Name, err)
		}
		stats.count(created)
		s.colors[strings.ToLower(spec.Name)] = c.ID
	}
	for _, name := range f.Sizes {
		var sz models.Size
		created, err := s.ensure(ctx, &sz, "LOWER(name) = ?", strings.ToLower(name), func() error {
			out, err := s.catalog.CreateSize(ctx, catalog.SizeInput{Name: name})
			if err == nil {
				sz = *out
			}
			return err
		})
		if err != nil {
			return stats, fmt.Errorf("size %q: %w", name, err)
		}
		stats.count(created)
		s.sizes[strings.ToLower(name)] = sz.ID
	}

	for _, spec := range f.Products {
		created, err := s.product(ctx, spec)
		if err != nil {
			return stats, fmt.Errorf("product %q: %w", spec.SKU, err)
		}
		stats.count(created)
	}
	return stats, nil
}

func (st *Stats) count(created bool) {
	if created {
		st.Created++
	} else {
		st.Updated++
	}
}

// ensure loads the row matching where into dest, or calls create when there is none.
func (s *seeder) ensure(ctx context.Context, dest any, where string, arg any, create func() error) (bool, error) {
	err := s.db.WithContext(ctx).Where(where, arg).First(dest).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, create()
}

func lookup(ids map[string]uint, kind, name string) (uint, error) {
	id, ok := ids[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown %s %q", kind, name)
	}
	return id, nil
}

func (s *seeder) product(ctx context.Context, spec ProductSpec) (bool, error) {
	in := products.ProductInput{
		Name:        spec.Name,
		SKU:         spec.SKU,
		Description: spec.Description,
		Gender:      spec.Gender,
		DressStyle:  spec.DressStyle,
	}
	var err error
	if in.CategoryID, err = lookup(s.categories, "category", spec.Category); err != nil {
		return false, err
	}
	if in.BrandID, err = lookup(s.brands, "brand", spec.Brand); err != nil {
		return false, err
	}
	for i, url := range spec.Images {
		in.Images = append(in.Images, products.ImageInput{URL: url, IsMain: i == 0})
	}
	for _, v := range spec.Variants {
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			return false, fmt.Errorf("variant %s/%s price: %w", v.Color, v.Size, err)
		}
		colorID, err := lookup(s.colors, "color", v.Color)
		if err != nil {
			return false, err
		}
		sizeID, err := lookup(s.sizes, "size", v.Size)
		if err != nil {
			return false, err
		}
		in.Variants = append(in.Variants, products.VariantInput{
			ColorID: colorID, SizeID: sizeID, Quantity: v.Quantity, Price: price, Discount: v.Discount,
		})
	}

	var existing models.Product
	err = s.db.WithContext(ctx).Where("sku = ?", strings.ToUpper(strings.TrimSpace(spec.SKU))).First(&existing).Error
	switch {
	case err == nil:
		_, err = s.products.EditProduct(ctx, existing.ID, in)
		return false, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		p, err := s.products.CreateProduct(ctx, in)
		if err == nil {
			log.Debugw("seeded product", "sku", p.SKU, "slug", p.Slug)
		}
		return true, err
	default:
		return false, err
	}
}
