// Package catalog holds the immutable product list offered by the storefront.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/money"
)

//go:embed default.yaml
var defaultCatalog []byte

// ErrProductNotFound is returned by Find when no product has the given id.
var ErrProductNotFound = errors.New("product not found")

// Product is an immutable catalog entry.
type Product struct {
	ID          int64        `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Price       money.Amount `yaml:"price" json:"price"`
	Description string       `yaml:"description" json:"description"`
}

// Catalog is an ordered, read-only set of products keyed by id.
type Catalog struct {
	products []Product
	index    map[int64]int
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog YAML file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Unknown fields are rejected so typos
// surface at load time rather than as silently empty products.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(file.Products...)
}

// New builds a catalog from products, validating each one.
// Names and descriptions are NFC normalized.
func New(products ...Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		index:    make(map[int64]int, len(products)),
	}
	for i, p := range products {
		p.Name = norm.NFC.String(strings.TrimSpace(p.Name))
		p.Description = norm.NFC.String(strings.TrimSpace(p.Description))

		if p.Name == "" {
			return nil, fmt.Errorf("product[%d]: name is required", i)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product[%d] %q: price must not be negative", i, p.Name)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("product[%d] %q: duplicate id %d", i, p.Name, p.ID)
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Products returns the products in catalog order. The slice is a copy.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Find returns the product with the given id.
func (c *Catalog) Find(id int64) (Product, error) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return c.products[i], nil
}
