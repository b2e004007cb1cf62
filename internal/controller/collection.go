// Package controller owns the employee list: the canonical record set
// fetched from the gateway, the filter, sort and pagination state, and the
// archive intent.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
	"github.com/locvowork/employee_management_sample/console/internal/view"
)

// DefaultSearchDebounce is the delay before a typed search term is applied.
const DefaultSearchDebounce = 500 * time.Millisecond

// Options configures a CollectionController.
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	Clock          clockwork.Clock
	Notifier       domain.Notifier
	Preferences    domain.PreferenceStore
}

// ViewState is the presentation-facing snapshot of the list.
type ViewState struct {
	Items       []domain.Employee
	Total       int
	Page        int
	PageSize    int
	Loading     bool
	Sort        domain.SortPreference
	Criteria    domain.FilterCriteria
	SearchInput string
	ViewMode    domain.ViewMode
	RefreshKey  uint64
}

// RangeLabel renders the pagination summary, e.g. "6-10 of 12 items".
func (v ViewState) RangeLabel() string {
	if v.Total == 0 {
		return "0-0 of 0 items"
	}
	first := (v.Page-1)*v.PageSize + 1
	return fmt.Sprintf("%d-%d of %d items", first, first+len(v.Items)-1, v.Total)
}

// CollectionController is the single writer of the employee record set.
// All methods are safe for concurrent use; listeners registered with
// OnChange may be called from the debounce timer goroutine.
type CollectionController struct {
	gw       domain.EmployeeGateway
	prefs    domain.PreferenceStore
	notifier domain.Notifier
	search   *debouncer

	mu          sync.Mutex
	records     []domain.Employee
	refreshKey  uint64
	loading     bool
	loaded      bool
	criteria    domain.FilterCriteria
	searchInput string
	sort        domain.SortPreference
	page        int
	pageSize    int
	viewMode    domain.ViewMode
	listeners   []func(ViewState)
}

// New creates a controller and restores the persisted sort preference.
// The record set stays empty until the first Refresh.
func New(ctx context.Context, gw domain.EmployeeGateway, opts Options) (*CollectionController, error) {
	if gw == nil {
		return nil, errors.New("employee gateway is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Notifier == nil {
		opts.Notifier = domain.NotifierFunc(func(context.Context, domain.Notification) {})
	}

	c := &CollectionController{
		gw:       gw,
		prefs:    opts.Preferences,
		notifier: opts.Notifier,
		search:   newDebouncer(opts.Clock, opts.SearchDebounce),
		page:     1,
		pageSize: opts.PageSize,
		viewMode: domain.ViewModeTable,
	}

	if c.prefs != nil {
		pref, err := c.prefs.LoadSort(ctx)
		if err != nil {
			logger.WarnLog(ctx, "Failed to load sort preference, starting unsorted: %v", err)
		} else if pref.Active() && view.IsSortableColumn(pref.ColumnKey) {
			c.sort = pref
		}
	}
	return c, nil
}

// Close cancels the pending search debounce.
func (c *CollectionController) Close() {
	c.search.Cancel()
}

// OnChange registers a listener called after every state change.
func (c *CollectionController) OnChange(fn func(ViewState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *CollectionController) emit() {
	c.mu.Lock()
	state := c.viewLocked()
	listeners := make([]func(ViewState), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// ==================== Fetch ====================

// Refresh bumps the refresh key and re-fetches the full record set. Only the
// response to the most recently issued refresh is applied; older responses
// are dropped. On failure the previous record set is kept.
func (c *CollectionController) Refresh(ctx context.Context) error {
	err := c.fetch(ctx)
	if errors.Is(err, domain.ErrFetchSuperseded) {
		return nil
	}
	return err
}

func (c *CollectionController) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.refreshKey++
	gen := c.refreshKey
	c.loading = true
	c.mu.Unlock()
	c.emit()

	ctx = logger.WithLogger(ctx, map[string]interface{}{"refresh_key": gen})
	records, err := c.gw.List(ctx)

	c.mu.Lock()
	if gen != c.refreshKey {
		latest := c.refreshKey
		c.mu.Unlock()
		logger.DebugLog(ctx, "Discarding fetch %d, superseded by %d", gen, latest)
		return domain.ErrFetchSuperseded
	}
	c.loading = false
	if err == nil {
		c.records = cloneAll(records)
		c.loaded = true
	}
	c.mu.Unlock()

	if err != nil {
		logger.ErrorLog(ctx, "Failed to load employees: %v", err)
		c.notifier.Notify(ctx, domain.Notification{
			Level:   domain.NotifyError,
			Title:   "Failed to Load Employees",
			Message: fmt.Sprintf("Unable to fetch employee data: %v", err),
		})
		c.emit()
		return domain.AsGatewayError("list employees", err)
	}

	logger.InfoLog(ctx, "Loaded %d employees", len(records))
	c.emit()
	return nil
}

// ==================== Archive ====================

// Archive soft-deletes a record by submitting a copy with status Archived.
// The local record set is only changed by the refresh that follows a
// confirmed update. A failed follow-up refresh is reported by Refresh itself
// and does not fail the archive.
func (c *CollectionController) Archive(ctx context.Context, id int) error {
	c.mu.Lock()
	var target *domain.Employee
	for i := range c.records {
		if c.records[i].IDValue() == id && c.records[i].HasID() {
			rec := c.records[i].Clone()
			target = &rec
			break
		}
	}
	c.mu.Unlock()

	if target == nil {
		err := &domain.NotFoundError{ID: id}
		c.notifyArchiveFailed(ctx, err)
		return err
	}

	payload := *target
	payload.Status = domain.StatusArchived
	if _, err := c.gw.Update(ctx, id, payload); err != nil {
		c.notifyArchiveFailed(ctx, err)
		return domain.AsGatewayError("archive employee", err)
	}

	c.notifier.Notify(ctx, domain.Notification{
		Level:   domain.NotifySuccess,
		Title:   "Employee Archived",
		Message: "The employee has been moved to Archived.",
	})
	if err := c.Refresh(ctx); err != nil {
		logger.WarnLog(ctx, "Employee %d archived but the list could not be reloaded: %v", id, err)
	}
	return nil
}

func (c *CollectionController) notifyArchiveFailed(ctx context.Context, err error) {
	logger.ErrorLog(ctx, "Failed to archive employee: %v", err)
	c.notifier.Notify(ctx, domain.Notification{
		Level:   domain.NotifyError,
		Title:   "Archive Failed",
		Message: fmt.Sprintf("Unable to archive employee: %v", err),
	})
}

// ==================== Filters ====================

// SetSearchTerm records raw search input. It is applied to the filter once
// no further input arrives within the debounce delay.
func (c *CollectionController) SetSearchTerm(term string) {
	c.mu.Lock()
	c.searchInput = term
	c.mu.Unlock()

	c.search.Trigger(func() { c.applySearch(term) })
	c.emit()
}

// FlushSearch applies the pending search input immediately.
func (c *CollectionController) FlushSearch() {
	c.search.Cancel()
	c.mu.Lock()
	term := c.searchInput
	c.mu.Unlock()
	c.applySearch(term)
}

func (c *CollectionController) applySearch(term string) {
	c.mu.Lock()
	c.criteria.Search = term
	c.mu.Unlock()
	c.emit()
}

func (c *CollectionController) update(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
	c.emit()
}

// SetDepartment restricts the view to one department; "" clears it.
func (c *CollectionController) SetDepartment(d domain.Department) {
	c.update(func() { c.criteria.Department = d })
}

// SetStatus restricts the view to one status; "" clears it.
func (c *CollectionController) SetStatus(s domain.Status) {
	c.update(func() { c.criteria.Status = s })
}

// SetDateRange restricts joining dates to r; nil clears it.
func (c *CollectionController) SetDateRange(r *domain.DateRange) {
	c.update(func() { c.criteria.DateRange = r })
}

// SetShowArchived switches between the active and the archived view.
func (c *CollectionController) SetShowArchived(show bool) {
	c.update(func() { c.criteria.ShowArchived = show })
}

// SetViewMode switches between table and card rendering.
func (c *CollectionController) SetViewMode(m domain.ViewMode) {
	c.update(func() { c.viewMode = m })
}

// ResetFilters clears every filter, including pending search input.
func (c *CollectionController) ResetFilters() {
	c.search.Cancel()
	c.update(func() {
		c.searchInput = ""
		c.criteria = domain.FilterCriteria{}
	})
}

// ==================== Sort & pagination ====================

// SetSort changes the sort descriptor and writes it through to the
// preference store. A failed write is logged; the new order still applies.
func (c *CollectionController) SetSort(ctx context.Context, pref domain.SortPreference) {
	c.update(func() { c.sort = pref })

	if c.prefs == nil {
		return
	}
	if err := c.prefs.SaveSort(ctx, pref); err != nil {
		logger.WarnLog(ctx, "Failed to persist sort preference: %v", err)
	}
}

// SetPagination applies the page and page size requested by the
// pagination control. Non-positive sizes keep the current size.
func (c *CollectionController) SetPagination(page, pageSize int) {
	c.update(func() {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
		if page < 1 {
			page = 1
		}
		c.page = page
	})
}

// ==================== Read side ====================

// View returns the filtered, sorted, paginated snapshot. A page beyond the
// filtered total is clamped to the last page, and the clamp is remembered
// once the first fetch has succeeded.
func (c *CollectionController) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *CollectionController) viewLocked() ViewState {
	p := view.Apply(c.records, c.criteria, c.sort, c.page, c.pageSize)
	if c.loaded {
		c.page = p.Page
	}

	criteria := c.criteria
	if criteria.DateRange != nil {
		r := *criteria.DateRange
		criteria.DateRange = &r
	}
	return ViewState{
		Items:       p.Items,
		Total:       p.Total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		Loading:     c.loading,
		Sort:        c.sort,
		Criteria:    criteria,
		SearchInput: c.searchInput,
		ViewMode:    c.viewMode,
		RefreshKey:  c.refreshKey,
	}
}

// Visible returns every record passing the filters in sort order.
func (c *CollectionController) Visible() []domain.Employee {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Sort(view.Filter(c.records, c.criteria), c.sort)
}

// Records returns a copy of the canonical record set.
func (c *CollectionController) Records() []domain.Employee {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.records)
}

// Loading reports whether the latest fetch is still pending.
func (c *CollectionController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// RefreshKey returns the generation of the latest issued fetch.
func (c *CollectionController) RefreshKey() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshKey
}

func cloneAll(records []domain.Employee) []domain.Employee {
	out := make([]domain.Employee, len(records))
	for i, e := range records {
		out[i] = e.Clone()
	}
	return out
}
