package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// store is an in-memory database shared by the fake repositories.
type store struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]domain.User
	roles       []domain.Role
	departments map[int64]domain.Department
	teams       map[int64]domain.Team
	categories  map[int64]domain.TicketCategory
	priorities  map[int64]domain.TicketPriority
	statuses    map[int64]domain.TicketStatus
	tickets     map[int64]domain.Ticket
	comments    []domain.TicketComment
	attachments []domain.TicketAttachment
	feedback    map[int64]domain.TicketFeedback
	faqCats     map[int64]domain.FAQCategory
	faqItems    map[int64]domain.FAQItem

	failCommentCreate error
}

func newStore() *store {
	return &store{
		nextID:      1000,
		users:       map[int64]domain.User{},
		roles:       []domain.Role{{ID: 1, Name: domain.RoleAdmin}, {ID: 2, Name: domain.RoleAgent}, {ID: 3, Name: domain.RoleUser}},
		departments: map[int64]domain.Department{},
		teams:       map[int64]domain.Team{},
		categories:  map[int64]domain.TicketCategory{},
		priorities:  map[int64]domain.TicketPriority{},
		statuses:    map[int64]domain.TicketStatus{},
		tickets:     map[int64]domain.Ticket{},
		feedback:    map[int64]domain.TicketFeedback{},
		faqCats:     map[int64]domain.FAQCategory{},
		faqItems:    map[int64]domain.FAQItem{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

// seedReference loads the seeded statuses plus the priorities, categories and
// departments an administrator would create before the first ticket.
func (s *store) seedReference() {
	s.statuses[1] = domain.TicketStatus{ID: 1, Name: "Open"}
	s.statuses[2] = domain.TicketStatus{ID: 2, Name: "In Progress"}
	s.statuses[3] = domain.TicketStatus{ID: 3, Name: "Resolved", IsTerminal: true}
	s.statuses[4] = domain.TicketStatus{ID: 4, Name: "Closed", IsTerminal: true}
	s.statuses[5] = domain.TicketStatus{ID: 5, Name: "Reopened"}
	s.priorities[1] = domain.TicketPriority{ID: 1, Name: "Low", Level: 1}
	s.priorities[2] = domain.TicketPriority{ID: 2, Name: "Medium", Level: 2}
	s.categories[1] = domain.TicketCategory{ID: 1, Name: "Hardware", IsActive: true}
	s.categories[2] = domain.TicketCategory{ID: 2, Name: "Legacy", IsActive: false}
	s.departments[1] = domain.Department{ID: 1, Name: "IT", IsActive: true}
	s.departments[2] = domain.Department{ID: 2, Name: "HR", IsActive: true}
	s.departments[3] = domain.Department{ID: 3, Name: "Closed Dept", IsActive: false}
	s.teams[10] = domain.Team{ID: 10, DepartmentID: 1, Name: "Desk", IsActive: true}
	s.teams[20] = domain.Team{ID: 20, DepartmentID: 2, Name: "Payroll", IsActive: true}
	s.users[1] = domain.User{ID: 1, Email: "alice@example.com", FirstName: "Alice", LastName: "Smith", IsActive: true}
	s.users[2] = domain.User{ID: 2, Email: "bob@example.com", FirstName: "Bob", LastName: "Jones", IsActive: true}
	s.users[3] = domain.User{ID: 3, Email: "carol@example.com", FirstName: "Carol", LastName: "White", IsActive: true}
	s.users[9] = domain.User{ID: 9, Email: "gone@example.com", FirstName: "Gone", LastName: "User", IsActive: false}
}

func (s *store) commentsFor(ticketID int64) []domain.TicketComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TicketComment
	for _, c := range s.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out
}

// fakeTx restores tickets and comments when fn fails.
type fakeTx struct {
	s     *store
	calls int
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	f.s.mu.Lock()
	tickets := make(map[int64]domain.Ticket, len(f.s.tickets))
	for k, v := range f.s.tickets {
		tickets[k] = v
	}
	comments := append([]domain.TicketComment(nil), f.s.comments...)
	users := make(map[int64]domain.User, len(f.s.users))
	for k, v := range f.s.users {
		users[k] = v
	}
	f.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.s.mu.Lock()
		f.s.tickets = tickets
		f.s.comments = comments
		f.s.users = users
		f.s.mu.Unlock()
		return err
	}
	return nil
}

type fakeUsers struct{ s *store }

func (r fakeUsers) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.id()
	u.CreatedAt = time.Now().UTC()
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUsers) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = old.PasswordHash
	u.Roles = old.Roles
	r.s.users[u.ID] = *u
	return nil
}

func (r fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Roles = append([]domain.UserRole(nil), u.Roles...)
	return &u, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeUsers) List(_ context.Context, activeOnly bool) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		if activeOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeUsers) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUsers) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.IsActive = active
	r.s.users[id] = u
	return nil
}

func (r fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

func (r fakeUsers) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.LastLogin = &at
	r.s.users[id] = u
	return nil
}

func (r fakeUsers) AddRole(_ context.Context, role *domain.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[role.UserID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Roles = append(u.Roles, *role)
	r.s.users[u.ID] = u
	return nil
}

func (r fakeUsers) RemoveRole(_ context.Context, userID, roleID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	kept := u.Roles[:0]
	for _, ur := range u.Roles {
		if ur.RoleID != roleID {
			kept = append(kept, ur)
		}
	}
	if len(kept) == len(u.Roles) {
		return pgx.ErrNoRows
	}
	u.Roles = kept
	r.s.users[userID] = u
	return nil
}

type fakeRoles struct{ s *store }

func (r fakeRoles) GetByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.s.roles {
		if strings.EqualFold(role.Name, name) {
			out := role
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r fakeRoles) List(context.Context) ([]domain.Role, error) {
	return append([]domain.Role(nil), r.s.roles...), nil
}

type fakeDepartments struct{ s *store }

func (r fakeDepartments) Create(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	r.s.departments[d.ID] = *d
	return nil
}

func (r fakeDepartments) Update(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.departments[d.ID] = *d
	return nil
}

func (r fakeDepartments) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (r fakeDepartments) List(_ context.Context, activeOnly bool) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Department
	for _, d := range r.s.departments {
		if !activeOnly || d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeDepartments) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.departments {
		if d.ID != excludeID && strings.EqualFold(d.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeDepartments) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	d.IsActive = active
	r.s.departments[id] = d
	return nil
}

type fakeTeams struct{ s *store }

func (r fakeTeams) Create(_ context.Context, t *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	r.s.teams[t.ID] = *t
	return nil
}

func (r fakeTeams) Update(_ context.Context, t *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.teams[t.ID] = *t
	return nil
}

func (r fakeTeams) GetByID(_ context.Context, id int64) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r fakeTeams) List(_ context.Context, activeOnly bool) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Team
	for _, t := range r.s.teams {
		if !activeOnly || t.IsActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeTeams) ListByDepartment(_ context.Context, departmentID int64) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Team
	for _, t := range r.s.teams {
		if t.DepartmentID == departmentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r fakeTeams) NameExists(_ context.Context, departmentID int64, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if t.ID != excludeID && t.DepartmentID == departmentID && strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTeams) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.IsActive = active
	r.s.teams[id] = t
	return nil
}

type fakeCategories struct{ s *store }

func (r fakeCategories) Create(_ context.Context, c *domain.TicketCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	r.s.categories[c.ID] = *c
	return nil
}

func (r fakeCategories) Update(_ context.Context, c *domain.TicketCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r fakeCategories) GetByID(_ context.Context, id int64) (*domain.TicketCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r fakeCategories) List(_ context.Context, activeOnly bool) ([]domain.TicketCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketCategory
	for _, c := range r.s.categories {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCategories) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCategories) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.IsActive = active
	r.s.categories[id] = c
	return nil
}

type fakePriorities struct{ s *store }

func (r fakePriorities) Create(_ context.Context, p *domain.TicketPriority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.priorities[p.ID] = *p
	return nil
}

func (r fakePriorities) Update(_ context.Context, p *domain.TicketPriority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priorities[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.priorities[p.ID] = *p
	return nil
}

func (r fakePriorities) GetByID(_ context.Context, id int64) (*domain.TicketPriority, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (r fakePriorities) List(context.Context) ([]domain.TicketPriority, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketPriority
	for _, p := range r.s.priorities {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (r fakePriorities) ListOrderedByName(ctx context.Context) ([]domain.TicketPriority, error) {
	out, _ := r.List(ctx)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakePriorities) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.priorities {
		if p.ID != excludeID && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakePriorities) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priorities[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.priorities, id)
	return nil
}

type fakeStatuses struct{ s *store }

func (r fakeStatuses) Create(_ context.Context, st *domain.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.ID = r.s.id()
	r.s.statuses[st.ID] = *st
	return nil
}

func (r fakeStatuses) Update(_ context.Context, st *domain.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.statuses[st.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.statuses[st.ID] = *st
	return nil
}

func (r fakeStatuses) GetByID(_ context.Context, id int64) (*domain.TicketStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.statuses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &st, nil
}

func (r fakeStatuses) List(context.Context) ([]domain.TicketStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketStatus
	for _, st := range r.s.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeStatuses) ListOrderedByName(ctx context.Context) ([]domain.TicketStatus, error) {
	out, _ := r.List(ctx)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeStatuses) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.statuses {
		if st.ID != excludeID && strings.EqualFold(st.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeStatuses) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.statuses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.statuses, id)
	return nil
}

type fakeTickets struct{ s *store }

func (r fakeTickets) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	r.s.tickets[t.ID] = *t
	return nil
}

func (r fakeTickets) Update(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.tickets[t.ID] = *t
	return nil
}

func (r fakeTickets) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tickets, id)
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.TicketID != id {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
	delete(r.s.feedback, id)
	return nil
}

func (r fakeTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r fakeTickets) GetDetails(_ context.Context, id int64) (*domain.TicketDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	d := r.s.details(t)
	return &d, nil
}

func (s *store) details(t domain.Ticket) domain.TicketDetails {
	d := domain.TicketDetails{
		Ticket:           t,
		CategoryName:     s.categories[t.CategoryID].Name,
		PriorityName:     s.priorities[t.PriorityID].Name,
		StatusName:       s.statuses[t.StatusID].Name,
		StatusIsTerminal: s.statuses[t.StatusID].IsTerminal,
		DepartmentName:   s.departments[t.DepartmentID].Name,
	}
	creator := s.users[t.CreatedByID]
	d.CreatedByName = creator.FullName()
	if t.TeamID != nil {
		name := s.teams[*t.TeamID].Name
		d.TeamName = &name
	}
	if t.AssignedToID != nil {
		assignee := s.users[*t.AssignedToID]
		name := assignee.FullName()
		d.AssignedToName = &name
	}
	return d
}

func matches(t domain.Ticket, f repository.TicketFilter) bool {
	eq := func(want *int64, got int64) bool { return want == nil || *want == got }
	if !eq(f.CreatedByID, t.CreatedByID) || !eq(f.DepartmentID, t.DepartmentID) ||
		!eq(f.StatusID, t.StatusID) || !eq(f.PriorityID, t.PriorityID) || !eq(f.CategoryID, t.CategoryID) {
		return false
	}
	if f.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *f.AssignedToID) {
		return false
	}
	if f.TeamID != nil && (t.TeamID == nil || *t.TeamID != *f.TeamID) {
		return false
	}
	if f.ActiveOnly && t.ClosedAt != nil {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func (r fakeTickets) List(_ context.Context, f repository.TicketFilter) ([]domain.TicketDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketDetails
	for _, t := range r.s.tickets {
		if matches(t, f) {
			out = append(out, r.s.details(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r fakeTickets) Count(_ context.Context, f repository.TicketFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.tickets {
		if matches(t, f) {
			n++
		}
	}
	return n, nil
}

func (r fakeTickets) CountByStatus(context.Context) ([]domain.TicketStatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[int64]int64{}
	for _, t := range r.s.tickets {
		counts[t.StatusID]++
	}
	var out []domain.TicketStatusCount
	for id, n := range counts {
		out = append(out, domain.TicketStatusCount{StatusID: id, StatusName: r.s.statuses[id].Name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatusID < out[j].StatusID })
	return out, nil
}

func (r fakeTickets) Touch(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = at
	r.s.tickets[id] = t
	return nil
}

type fakeComments struct{ s *store }

func (r fakeComments) Create(_ context.Context, c *domain.TicketComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCommentCreate != nil {
		return r.s.failCommentCreate
	}
	c.ID = r.s.id()
	r.s.comments = append(r.s.comments, *c)
	return nil
}

func (r fakeComments) ListByTicket(_ context.Context, ticketID int64, includeInternal bool) ([]domain.TicketComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketComment
	for i := len(r.s.comments) - 1; i >= 0; i-- {
		c := r.s.comments[i]
		if c.TicketID == ticketID && (includeInternal || !c.IsInternal) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAttachments struct{ s *store }

func (r fakeAttachments) Create(_ context.Context, a *domain.TicketAttachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	r.s.attachments = append(r.s.attachments, *a)
	return nil
}

func (r fakeAttachments) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketAttachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketAttachment
	for _, a := range r.s.attachments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeFeedback struct{ s *store }

func (r fakeFeedback) Create(_ context.Context, fb *domain.TicketFeedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fb.ID = r.s.id()
	r.s.feedback[fb.TicketID] = *fb
	return nil
}

func (r fakeFeedback) GetByTicket(_ context.Context, ticketID int64) (*domain.TicketFeedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fb, ok := r.s.feedback[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &fb, nil
}

type fakeFAQCategories struct{ s *store }

func (r fakeFAQCategories) Create(_ context.Context, c *domain.FAQCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	r.s.faqCats[c.ID] = *c
	return nil
}

func (r fakeFAQCategories) Update(_ context.Context, c *domain.FAQCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.faqCats[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.faqCats[c.ID] = *c
	return nil
}

func (r fakeFAQCategories) GetByID(_ context.Context, id int64) (*domain.FAQCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.faqCats[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r fakeFAQCategories) List(_ context.Context, activeOnly bool) ([]domain.FAQCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.FAQCategory
	for _, c := range r.s.faqCats {
		if !activeOnly || c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeFAQCategories) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.faqCats {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeFAQCategories) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.faqCats[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.IsActive = active
	r.s.faqCats[id] = c
	return nil
}

type fakeFAQItems struct{ s *store }

func (r fakeFAQItems) Create(_ context.Context, item *domain.FAQItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.id()
	r.s.faqItems[item.ID] = *item
	return nil
}

func (r fakeFAQItems) Update(_ context.Context, item *domain.FAQItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.faqItems[item.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.faqItems[item.ID] = *item
	return nil
}

func (r fakeFAQItems) GetByID(_ context.Context, id int64) (*domain.FAQItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.faqItems[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

func (r fakeFAQItems) List(_ context.Context, activeOnly bool) ([]domain.FAQItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.FAQItem
	for _, item := range r.s.faqItems {
		if !activeOnly || item.IsActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeFAQItems) ListByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]domain.FAQItem, error) {
	all, _ := r.List(ctx, activeOnly)
	var out []domain.FAQItem
	for _, item := range all {
		if item.CategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r fakeFAQItems) SetActive(_ context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.faqItems[id]
	if !ok {
		return pgx.ErrNoRows
	}
	item.IsActive = active
	r.s.faqItems[id] = item
	return nil
}

// recordingDispatcher keeps published events for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	events   []events.Event
	handlers map[events.EventType][]events.EventHandler
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	handlers := append([]events.EventHandler(nil), d.handlers[event.Type]...)
	d.mu.Unlock()
	for _, h := range handlers {
		_ = h(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = map[events.EventType][]events.EventHandler{}
	}
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

// stepClock returns a fixed instant so tests can check strict ordering.
type stepClock struct{ at time.Time }

func (c *stepClock) Now() time.Time { return c.at }

// fixture wires every service over one store.
type fixture struct {
	store       *store
	tx          *fakeTx
	clock       *stepClock
	dispatcher  *recordingDispatcher
	tickets     *TicketService
	assignments *AssignmentService
}

func newFixture() *fixture {
	s := newStore()
	s.seedReference()
	f := &fixture{
		store:      s,
		tx:         &fakeTx{s: s},
		clock:      &stepClock{at: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		dispatcher: &recordingDispatcher{},
	}
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo:     fakeTickets{s},
		CommentRepo:    fakeComments{s},
		AttachmentRepo: fakeAttachments{s},
		FeedbackRepo:   fakeFeedback{s},
		UserRepo:       fakeUsers{s},
		DepartmentRepo: fakeDepartments{s},
		TeamRepo:       fakeTeams{s},
		CategoryRepo:   fakeCategories{s},
		PriorityRepo:   fakePriorities{s},
		StatusRepo:     fakeStatuses{s},
		Tx:             f.tx,
		Dispatcher:     f.dispatcher,
		Now:            f.clock.Now,
	})
	f.assignments = NewAssignmentService(AssignmentDependencies{
		TicketRepo:  fakeTickets{s},
		CommentRepo: fakeComments{s},
		UserRepo:    fakeUsers{s},
		Tx:          f.tx,
		Dispatcher:  f.dispatcher,
		Now:         f.clock.Now,
	})
	return f
}

func int64Ptr(v int64) *int64 { return &v }
