// Package store содержит состояние бота, живущее только в памяти процесса.
package store

import (
	"sync"
	"time"

	"github.com/ivanoskov/premium_access_bot/internal/model"
	"github.com/ivanoskov/premium_access_bot/internal/session"
)

// MaxInvoicesPerUser - сколько последних счетов пользователя хранится.
// Более старые счета забываются, их оплата будет отклонена.
const MaxInvoicesPerUser = 5

// Store владеет журналом подтверждений, языками, сессиями и выставленными счетами.
// Все методы безопасны для конкурентного вызова.
type Store struct {
	mu        sync.Mutex
	approvals map[int64]*model.ApprovalRecord
	order     []int64
	languages map[int64]string
	sessions  map[int64]session.State
	invoices  map[string]model.Invoice
	byUser    map[int64][]string
	settled   map[string]int
	payments  int
	closed    bool
}

func New() *Store {
	return &Store{
		approvals: make(map[int64]*model.ApprovalRecord),
		languages: make(map[int64]string),
		sessions:  make(map[int64]session.State),
		invoices:  make(map[string]model.Invoice),
		byUser:    make(map[int64][]string),
		settled:   make(map[string]int),
	}
}

// PutPending создает или перезаписывает запись пользователя со статусом pending.
// Повторная загрузка сохраняет исходную позицию записи в отчете.
func (s *Store) PutPending(userID int64, now time.Time) model.ApprovalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.approvals[userID]; !ok {
		s.order = append(s.order, userID)
	}
	rec := &model.ApprovalRecord{
		UserID:    userID,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.approvals[userID] = rec
	return *rec
}

func (s *Store) Approval(userID int64) (model.ApprovalRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.approvals[userID]
	if !ok {
		return model.ApprovalRecord{}, false
	}
	return *rec, true
}

// SetStatus меняет статус существующей записи. Отсутствующая запись не создается.
func (s *Store) SetStatus(userID int64, status model.Status, now time.Time) (model.ApprovalRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.approvals[userID]
	if !ok {
		return model.ApprovalRecord{}, false
	}
	rec.Status = status
	rec.UpdatedAt = now
	return *rec, true
}

// Approvals возвращает копию журнала в порядке первой загрузки чека
func (s *Store) Approvals() []model.ApprovalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ApprovalRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.approvals[id])
	}
	return out
}

func (s *Store) Language(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lang, ok := s.languages[userID]
	return lang, ok
}

func (s *Store) SetLanguage(userID int64, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.languages[userID] = lang
}

// Session возвращает состояние диалога; без сессии пользователь находится в AwaitingChoice
func (s *Store) Session(userID int64) session.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions[userID]
}

// Transition применяет событие к сессии пользователя атомарно.
// При ошибке состояние не меняется.
func (s *Store) Transition(userID int64, event session.Event) (session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := session.Next(s.sessions[userID], event)
	if err != nil {
		return s.sessions[userID], err
	}
	s.sessions[userID] = next
	return next, nil
}

// AddInvoice запоминает счет и вытесняет самые старые счета пользователя сверх MaxInvoicesPerUser
func (s *Store) AddInvoice(inv model.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices[inv.ID] = inv
	ids := append(s.byUser[inv.UserID], inv.ID)
	if n := len(ids) - MaxInvoicesPerUser; n > 0 {
		for _, old := range ids[:n] {
			delete(s.invoices, old)
			delete(s.settled, old)
		}
		ids = append([]string(nil), ids[n:]...)
	}
	s.byUser[inv.UserID] = ids
}

func (s *Store) Invoice(id string) (model.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	return inv, ok
}

// MarkSettled увеличивает счетчик оплат счета и возвращает новое значение
func (s *Store) MarkSettled(invoiceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settled[invoiceID]++
	s.payments++
	return s.settled[invoiceID]
}

// Payments возвращает количество обработанных событий оплаты
func (s *Store) Payments() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.payments
}

// Close освобождает состояние при остановке приложения.
// Данные не сохраняются между перезапусками.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	clear(s.approvals)
	clear(s.languages)
	clear(s.sessions)
	clear(s.invoices)
	clear(s.byUser)
	clear(s.settled)
	s.order = nil
	s.payments = 0
	return nil
}
