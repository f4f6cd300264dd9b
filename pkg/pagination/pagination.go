package pagination

// Catalog pages reserve a hero slot on the first page: page 1 carries the
// hero product plus a full page of items, later pages skip past the hero.
const (
	// DefaultPageSize is the number of products per catalog page.
	DefaultPageSize = 6
	// HeroItemCount is how many products the first page promotes above the grid.
	HeroItemCount = 1
	// MaxPageSize caps how many rows any listing query can request.
	MaxPageSize = 60
)

// Params holds pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Window is the resolved offset/limit pair for a page request.
type Window struct {
	Offset     int
	Limit      int
	Page       int
	TotalPages int
}

// NormalizePageSize enforces the configured default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NormalizePage clamps the requested page to 1 or above.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Resolve computes the query window for a catalog page given the total item
// count. The first page takes the hero item plus a full page; subsequent
// pages offset past the hero so no product repeats across pages.
func Resolve(params Params, totalItems int64) Window {
	page := NormalizePage(params.Page)
	size := NormalizePageSize(params.PageSize)

	totalPages := 1
	if remaining := totalItems - HeroItemCount; remaining > 0 {
		totalPages = int((remaining + int64(size) - 1) / int64(size))
	}
	if page > totalPages {
		page = totalPages
	}

	w := Window{
		Page:       page,
		TotalPages: totalPages,
	}
	if page == 1 {
		w.Offset = 0
		w.Limit = size + HeroItemCount
	} else {
		w.Offset = (page-1)*size + HeroItemCount
		w.Limit = size
	}
	return w
}

// PlainWindow computes a simple offset window with no hero slot, used by
// search results and order history.
func PlainWindow(params Params) Window {
	page := NormalizePage(params.Page)
	size := NormalizePageSize(params.PageSize)
	return Window{
		Offset: (page - 1) * size,
		Limit:  size,
		Page:   page,
	}
}
