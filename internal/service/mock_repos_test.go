package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
)

// ── Mock CommuteLogRepository ──

type mockCommuteLogRepo struct {
	logs      map[int64]*model.CommuteLog
	personnel map[string]model.Personnel
	nextID    int64
	createErr error
	updateErr error
}

func newMockCommuteLogRepo() *mockCommuteLogRepo {
	return &mockCommuteLogRepo{
		logs:      make(map[int64]*model.CommuteLog),
		personnel: make(map[string]model.Personnel),
	}
}

func (m *mockCommuteLogRepo) Create(_ context.Context, log *model.CommuteLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	log.ID = m.nextID
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *mockCommuteLogRepo) GetByID(_ context.Context, id int64) (*model.CommuteLog, error) {
	if l, ok := m.logs[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommuteLogRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.CommuteLog, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCommuteLogRepo) FindOpenMain(_ context.Context, code string, from, to time.Time) (*model.CommuteLog, error) {
	var found *model.CommuteLog
	for _, l := range m.logs {
		if l.PersonnelCode != code || !l.IsOpen() {
			continue
		}
		if l.EntryTime.Before(from) || !l.EntryTime.Before(to) {
			continue
		}
		if found == nil || l.EntryTime.After(found.EntryTime) {
			found = l
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *mockCommuteLogRepo) CloseOpen(_ context.Context, id int64, exitTime time.Time) (int64, error) {
	l, ok := m.logs[id]
	if !ok || l.ExitTime != nil {
		return 0, nil
	}
	l.ExitTime = &exitTime
	l.UpdatedAt = time.Now()
	return 1, nil
}

func (m *mockCommuteLogRepo) UpdateTimes(_ context.Context, id int64, entryTime time.Time, exitTime *time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if l, ok := m.logs[id]; ok {
		l.EntryTime = entryTime
		l.ExitTime = exitTime
	}
	return nil
}

func (m *mockCommuteLogRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := m.logs[id]; !ok {
		return 0, nil
	}
	delete(m.logs, id)
	return 1, nil
}

func (m *mockCommuteLogRepo) ListBetween(_ context.Context, from, to time.Time, filter repository.CommuteLogFilter) ([]model.CommuteLogView, error) {
	var result []model.CommuteLogView
	for _, l := range m.logs {
		if l.EntryTime.Before(from) || !l.EntryTime.Before(to) {
			continue
		}
		if filter.PersonnelCode != "" && l.PersonnelCode != filter.PersonnelCode {
			continue
		}
		view := model.CommuteLogView{CommuteLog: *l}
		if p, ok := m.personnel[l.PersonnelCode]; ok {
			view.FirstName = &p.FirstName
			view.LastName = &p.LastName
			view.Department = p.Department
		}
		if filter.Department != "" && (view.Department == nil || *view.Department != filter.Department) {
			continue
		}
		result = append(result, view)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EntryTime.After(result[j].EntryTime)
	})
	return result, nil
}

// ── Mock HourlyCommuteLogRepository ──

type mockHourlyLogRepo struct {
	logs      map[int64]*model.HourlyCommuteLog
	nextID    int64
	createErr error
}

func newMockHourlyLogRepo() *mockHourlyLogRepo {
	return &mockHourlyLogRepo{logs: make(map[int64]*model.HourlyCommuteLog)}
}

func (m *mockHourlyLogRepo) Create(_ context.Context, log *model.HourlyCommuteLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	log.ID = m.nextID
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *mockHourlyLogRepo) GetByID(_ context.Context, id int64) (*model.HourlyCommuteLog, error) {
	if l, ok := m.logs[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHourlyLogRepo) FindActive(_ context.Context, code string) (*model.HourlyCommuteLog, error) {
	for _, l := range m.logs {
		if l.PersonnelCode == code && l.IsActive() {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHourlyLogRepo) MarkReturned(_ context.Context, id int64, at time.Time) (int64, error) {
	l, ok := m.logs[id]
	if !ok || !l.IsActive() {
		return 0, nil
	}
	l.ReturnTime = &at
	return 1, nil
}

func (m *mockHourlyLogRepo) ListActive(_ context.Context) ([]model.HourlyCommuteLog, error) {
	var result []model.HourlyCommuteLog
	for _, l := range m.logs {
		if l.IsActive() {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockHourlyLogRepo) ListReturnedBetween(_ context.Context, from, to time.Time) ([]model.HourlyCommuteLog, error) {
	var result []model.HourlyCommuteLog
	for _, l := range m.logs {
		if l.IsActive() || l.ExitTime.Before(from) || !l.ExitTime.Before(to) {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockHourlyLogRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := m.logs[id]; !ok {
		return 0, nil
	}
	delete(m.logs, id)
	return 1, nil
}

// ── Mock CommuteEditLogRepository ──

type mockEditLogRepo struct {
	logs []model.CommuteEditLog
	err  error
}

func newMockEditLogRepo() *mockEditLogRepo {
	return &mockEditLogRepo{}
}

func (m *mockEditLogRepo) BatchCreate(_ context.Context, logs []model.CommuteEditLog) error {
	if m.err != nil {
		return m.err
	}
	for _, l := range logs {
		l.ID = int64(len(m.logs) + 1)
		m.logs = append(m.logs, l)
	}
	return nil
}

func (m *mockEditLogRepo) ListByCommuteLog(_ context.Context, id int64) ([]model.CommuteEditLog, error) {
	var result []model.CommuteEditLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].CommuteLogID == id {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock BackupRepository ──

type mockBackupRepo struct {
	tables    map[string][]map[string]interface{}
	truncated bool
	inserted  []string
	reset     []string
	failOn    string
	insertErr error
}

func newMockBackupRepo() *mockBackupRepo {
	return &mockBackupRepo{tables: make(map[string][]map[string]interface{})}
}

func (m *mockBackupRepo) ReadTable(_ context.Context, table string, _ []string) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0, len(m.tables[table]))
	rows = append(rows, m.tables[table]...)
	return rows, nil
}

func (m *mockBackupRepo) TruncateTables(_ context.Context, tables []string) error {
	m.truncated = true
	for _, t := range tables {
		delete(m.tables, t)
	}
	return nil
}

func (m *mockBackupRepo) InsertRows(_ context.Context, table string, rows []map[string]interface{}, _ int) error {
	if table == m.failOn {
		return m.insertErr
	}
	m.inserted = append(m.inserted, table)
	m.tables[table] = append(m.tables[table], rows...)
	return nil
}

func (m *mockBackupRepo) ResetIdentity(_ context.Context, table string) error {
	m.reset = append(m.reset, table)
	return nil
}

// ── Mock LockRepository ──

type mockLocker struct {
	keys []string
}

func (m *mockLocker) LockKey(_ context.Context, key string) error {
	m.keys = append(m.keys, key)
	return nil
}

// ── aggregate ──

type mockRepos struct {
	commute *mockCommuteLogRepo
	hourly  *mockHourlyLogRepo
	edits   *mockEditLogRepo
	users   *mockUserRepo
	backup  *mockBackupRepo
	locker  *mockLocker
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		commute: newMockCommuteLogRepo(),
		hourly:  newMockHourlyLogRepo(),
		edits:   newMockEditLogRepo(),
		users:   newMockUserRepo(),
		backup:  newMockBackupRepo(),
		locker:  &mockLocker{},
	}
	repo := &repository.Repository{
		CommuteLog: m.commute,
		HourlyLog:  m.hourly,
		EditLog:    m.edits,
		User:       m.users,
		Backup:     m.backup,
		Locker:     m.locker,
	}
	return repo, m
}
