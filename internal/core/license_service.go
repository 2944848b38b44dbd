package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"license-admin-go/internal/db"
	"license-admin-go/internal/models"
)

// TrialDuration is the fixed length of a bulk trial grant.
const TrialDuration = 3 * day

const emptyListMessage = "Nenhum usuário encontrado."

// licenseService implements the LicenseService interface.
type licenseService struct {
	userRepo     db.UserRepository
	pendingRepo  db.PendingActivationRepository
	sessions     SessionStore
	events       EventPublisher
	logger       *zap.Logger
	now          func() time.Time
	dedupPending bool

	// flight collapses identical in-flight submissions, e.g. a double click.
	flight  singleflight.Group
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option customizes a LicenseService.
type Option func(*licenseService)

// WithClock replaces the wall clock used for classification and written timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *licenseService) { s.now = now }
}

// WithPendingDedup skips creating a pending activation for an email that
// already has one.
func WithPendingDedup(enabled bool) Option {
	return func(s *licenseService) { s.dedupPending = enabled }
}

// NewLicenseService creates a new LicenseService instance.
func NewLicenseService(
	ur db.UserRepository,
	pr db.PendingActivationRepository,
	ss SessionStore,
	ep EventPublisher,
	logger *zap.Logger,
	opts ...Option,
) LicenseService {
	if ur == nil || pr == nil {
		panic("licenseService: repositories are required")
	}
	if ss == nil {
		ss = NewMemorySessionStore()
	}
	if ep == nil {
		ep = NewNoopPublisher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &licenseService{
		userRepo:    ur,
		pendingRepo: pr,
		sessions:    ss,
		events:      ep,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock serializes the actions of one operator.
func (s *licenseService) lock(operator string) func() {
	s.locksMu.Lock()
	m, ok := s.locks[operator]
	if !ok {
		m = &sync.Mutex{}
		s.locks[operator] = m
	}
	s.locksMu.Unlock()
	m.Lock()
	return m.Unlock
}

// withSession runs fn on the operator's session under the operator lock and
// persists the session afterwards. fn must only mutate state after its store
// writes succeed.
func (s *licenseService) withSession(ctx context.Context, operator string, fn func(st *SessionState) error) error {
	if operator == "" {
		return ErrAccessDenied
	}
	unlock := s.lock(operator)
	defer unlock()

	st, err := s.sessions.Get(ctx, operator)
	if errors.Is(err, ErrSessionNotFound) {
		st = NewSessionState(operator)
	} else if err != nil {
		return fmt.Errorf("failed to read session for '%s': %w", operator, err)
	}
	if st.Filter == "" {
		st.Filter = FilterAll
	}

	fnErr := fn(st)
	if err := s.sessions.Save(ctx, st); err != nil {
		s.logger.Error("Failed to save session", zap.String("operator", operator), zap.Error(err))
	}
	return fnErr
}

// collapse runs fn once for concurrent calls sharing key.
func (s *licenseService) collapse(key string, fn func() (interface{}, error)) (interface{}, error) {
	v, err, shared := s.flight.Do(key, fn)
	if shared {
		s.logger.Info("Duplicate submission collapsed", zap.String("key", key))
	}
	return v, err
}

func (s *licenseService) publish(ctx context.Context, routingKey string, ev LicenseEvent) {
	ev.Type = routingKey
	ev.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, routingKey, ev); err != nil {
		s.logger.Warn("Failed to publish license event",
			zap.String("routing_key", routingKey),
			zap.String("email", ev.Email),
			zap.Error(err))
	}
}

// load replaces the snapshot with a fresh copy of the whole collection,
// newest first. On failure st is left untouched.
func (s *licenseService) load(ctx context.Context, st *SessionState) (Notice, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load users", zap.String("operator", st.Operator), zap.Error(err))
		return Notice{}, withNotice(ErrorNotice("❌ Erro ao carregar usuários"), storeError("list users", err))
	}
	if users == nil {
		users = []*models.UserRecord{}
	}
	sortNewestFirst(users)

	st.Users = users
	st.Loaded = true
	st.LoadedAt = s.now()
	if st.SelectedID != "" {
		if _, ok := st.FindUser(st.SelectedID); !ok {
			st.SelectedID = ""
		}
	}
	s.logger.Info("Users loaded", zap.String("operator", st.Operator), zap.Int("count", len(users)))
	return SuccessNotice(fmt.Sprintf("✅ %d usuários carregados!", len(users))), nil
}

// sortNewestFirst orders by createdAt descending. Missing or unparseable
// dates count as epoch 0 and sink to the end.
func sortNewestFirst(users []*models.UserRecord) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.UnixMillis() > users[j].CreatedAt.UnixMillis()
	})
}

func (s *licenseService) ensureLoaded(ctx context.Context, st *SessionState) error {
	if st.Loaded {
		return nil
	}
	_, err := s.load(ctx, st)
	return err
}

func (s *licenseService) dashboard(st *SessionState) *DashboardView {
	now := s.now()
	visible := FilterUsers(st.Users, st.Filter, st.SearchTerm, now)
	v := &DashboardView{
		Operator:   st.Operator,
		Filter:     st.Filter,
		SearchTerm: st.SearchTerm,
		Total:      len(st.Users),
		Users:      BuildUserViews(visible, now),
		Stats:      ComputeStats(st.Users, now),
		Financial:  SummarizeFinancials(st.Users, now),
		SelectedID: st.SelectedID,
		LoadedAt:   st.LoadedAt,
	}
	if len(visible) == 0 {
		v.EmptyMessage = emptyListMessage
	}
	return v
}

func (s *licenseService) detail(u *models.UserRecord) *DetailView {
	d := BuildDetailView(u, s.now())
	return &d
}

// userStoreError maps a failed user write to ErrUserNotFound or ErrStore.
func userStoreError(op string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	return storeError(op, err)
}

func (s *licenseService) findUser(st *SessionState, userID string) (*models.UserRecord, error) {
	u, ok := st.FindUser(userID)
	if !ok {
		return nil, withNotice(ErrorNotice("❌ Usuário não encontrado"), fmt.Errorf("%w: %s", ErrUserNotFound, userID))
	}
	return u, nil
}

// selectedUser returns the user open in the detail editor, which must be userID.
func (s *licenseService) selectedUser(st *SessionState, userID string) (*models.UserRecord, error) {
	if st.SelectedID == "" || st.SelectedID != userID {
		return nil, withNotice(WarningNotice("⚠️ Abra os detalhes do usuário primeiro"),
			fmt.Errorf("%w: %s", ErrNoUserSelected, userID))
	}
	return s.findUser(st, userID)
}

// Dashboard returns the current view, loading the collection on first use.
func (s *licenseService) Dashboard(ctx context.Context, operator string) (*DashboardView, error) {
	var view *DashboardView
	err := s.withSession(ctx, operator, func(st *SessionState) error {
		if err := s.ensureLoaded(ctx, st); err != nil {
			return err
		}
		view = s.dashboard(st)
		return nil
	})
	return view, err
}

// Load re-fetches the collection.
func (s *licenseService) Load(ctx context.Context, operator string) (*ActionResult, error) {
	var res *ActionResult
	err := s.withSession(ctx, operator, func(st *SessionState) error {
		notice, err := s.load(ctx, st)
		if err != nil {
			return err
		}
		res = &ActionResult{Notice: notice, Dashboard: s.dashboard(st)}
		return nil
	})
	return res, err
}

// Search sets the search term. An empty term shows the whole filtered subset.
func (s *licenseService) Search(ctx context.Context, operator, term string) (*DashboardView, error) {
	var view *DashboardView
	err := s.withSession(ctx, operator, func(st *SessionState) error {
		if err := s.ensureLoaded(ctx, st); err != nil {
			return err
		}
		st.SearchTerm = term
		view = s.dashboard(st)
		return nil
	})
	return view, err
}

// SetFilter sets the active filter. It survives reloads and searches.
func (s *licenseService) SetFilter(ctx context.Context, operator, filter string) (*DashboardView, error) {
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, withNotice(WarningNotice("⚠️ Filtro inválido"), err)
	}
	var view *DashboardView
	err = s.withSession(ctx, operator, func(st *SessionState) error {
		if err := s.ensureLoaded(ctx, st); err != nil {
			return err
		}
		st.Filter = f
		view = s.dashboard(st)
		return nil
	})
	return view, err
}

// TogglePro grants or revokes PRO by hand. Activation opens the detail
// editor so billing terms can be recorded right away.
func (s *licenseService) TogglePro(ctx context.Context, operator, userID string, req models.TogglePRORequest) (*ActionResult, error) {
	plan := models.PlanFree
	if req.Activate {
		plan = models.NormalizePlan(req.Plan)
	}
	key := fmt.Sprintf("%s|pro|%s|%t|%s|%t", operator, userID, req.Activate, plan, req.Confirmed)
	v, err := s.collapse(key, func() (interface{}, error) {
		var res *ActionResult
		err := s.withSession(ctx, operator, func(st *SessionState) error {
			if err := s.ensureLoaded(ctx, st); err != nil {
				return err
			}
			u, err := s.findUser(st, userID)
			if err != nil {
				return err
			}

			var (
				fields     map[string]interface{}
				failure    string
				success    string
				routingKey string
			)
			if req.Activate {
				if !req.Confirmed {
					return confirmationRequired("Ativar PRO para %s?", u.Email)
				}
				fields = map[string]interface{}{
					models.FieldPlan:           plan,
					models.FieldIsPro:          true,
					models.FieldFeatures:       models.PlanFeatures(plan),
					models.FieldProActivatedBy: models.SourceAdminManual,
					models.FieldProActivatedAt: models.FormatISO(s.now()),
				}
				failure, success, routingKey = "❌ Erro ao ativar PRO", "✅ PRO ativado para %s!", EventProActivated
			} else {
				if !req.Confirmed {
					return confirmationRequired("Desativar PRO para %s?", u.Email)
				}
				fields = map[string]interface{}{
					models.FieldPlan:           models.PlanFree,
					models.FieldIsPro:          false,
					models.FieldFeatures:       []string{},
					models.FieldProActivatedBy: nil,
					models.FieldProActivatedAt: nil,
				}
				failure, success, routingKey = "❌ Erro ao desativar PRO", "✅ PRO desativado para %s!", EventProDeactivated
			}

			if err := s.userRepo.Update(ctx, userID, fields); err != nil {
				s.logger.Error("Failed to toggle PRO",
					zap.String("operator", operator),
					zap.String("user_id", userID),
					zap.Bool("activate", req.Activate),
					zap.Error(err))
				return withNotice(ErrorNotice(failure), userStoreError("toggle pro", err))
			}
			s.logger.Info("PRO toggled",
				zap.String("operator", operator),
				zap.String("email", u.Email),
				zap.String("plan", plan),
				zap.Bool("activate", req.Activate))
			s.publish(ctx, routingKey, LicenseEvent{
				UserID:   userID,
				Email:    u.Email,
				Operator: operator,
				Source:   models.SourceAdminManual,
				Plan:     plan,
			})

			email := u.Email
			if _, err := s.load(ctx, st); err != nil {
				// The write went through; keep the snapshot consistent with it.
				s.logger.Warn("Reload after PRO toggle failed", zap.Error(err))
				if fresh, getErr := s.userRepo.GetByID(ctx, userID); getErr == nil {
					*u = *fresh
				} else {
					applyProFields(u, req.Activate, plan, s.now())
				}
			}

			res = &ActionResult{Notice: SuccessNotice(fmt.Sprintf(success, email))}
			if req.Activate {
				if fresh, ok := st.FindUser(userID); ok {
					st.SelectedID = userID
					res.Detail = s.detail(fresh)
				}
			}
			res.Dashboard = s.dashboard(st)
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*ActionResult), nil
}

func applyProFields(u *models.UserRecord, activate bool, plan string, now time.Time) {
	u.IsPro = activate
	u.Plan = plan
	u.Features = models.PlanFeatures(plan)
	if activate {
		u.ProActivatedBy = models.SourceAdminManual
		u.ProActivatedAt = models.ISOTimestamp(now)
		return
	}
	u.ProActivatedBy = ""
	u.ProActivatedAt = models.Timestamp{}
}

// ActivateTrials grants a 3-day trial to every listed email. Emails without
// an account get a pending activation instead. Paid kiwify customers are
// skipped. Writes happen sequentially in input order.
func (s *licenseService) ActivateTrials(ctx context.Context, operator string, req models.ActivateTrialsRequest) (*TrialActivationResult, error) {
	if strings.TrimSpace(req.Emails) == "" {
		return nil, withNotice(WarningNotice("⚠️ Cole a lista de emails primeiro!"), ErrEmptyEmailList)
	}
	emails := ParseEmailList(req.Emails)
	if len(emails) == 0 {
		return nil, withNotice(WarningNotice("⚠️ Nenhum email válido encontrado!"), ErrNoValidEmails)
	}
	if !req.Confirmed {
		return nil, confirmationRequired("Ativar teste grátis de 3 dias para %d usuários?", len(emails))
	}

	key := operator + "|trials|" + strings.Join(emails, ",")
	v, err := s.collapse(key, func() (interface{}, error) {
		var res *TrialActivationResult
		err := s.withSession(ctx, operator, func(st *SessionState) error {
			var err error
			res, err = s.activateTrials(ctx, operator, emails)
			if err != nil {
				return err
			}
			if _, err := s.load(ctx, st); err != nil {
				s.logger.Warn("Reload after trial activation failed", zap.Error(err))
			}
			res.Dashboard = s.dashboard(st)
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*TrialActivationResult), nil
}

func (s *licenseService) activateTrials(ctx context.Context, operator string, emails []string) (*TrialActivationResult, error) {
	all, err := s.userRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch users for trial activation", zap.Error(err))
		return nil, withNotice(ErrorNotice("❌ Erro: "+err.Error()), storeError("list users", err))
	}
	byEmail := make(map[string]*models.UserRecord, len(all))
	for _, u := range all {
		byEmail[strings.ToLower(u.Email)] = u
	}

	expiresAt := models.FormatISO(s.now().Add(TrialDuration))
	res := &TrialActivationResult{
		Progress: InfoNotice(fmt.Sprintf("⏳ Ativando teste para %d usuários...", len(emails))),
	}
	fail := func(err error) (*TrialActivationResult, error) {
		s.logger.Error("Trial activation aborted",
			zap.String("operator", operator),
			zap.Int("activated", res.Activated),
			zap.Int("pending", res.Pending),
			zap.Error(err))
		return nil, withNotice(ErrorNotice("❌ Erro: "+err.Error()), storeError("activate trials", err))
	}

	for _, email := range emails {
		if u, ok := byEmail[email]; ok {
			if u.IsPro && u.ProActivatedBy == models.SourceKiwify {
				s.logger.Info("Skipping paid customer", zap.String("email", email))
				res.Skipped++
				continue
			}
			fields := map[string]interface{}{
				models.FieldIsPro:          true,
				models.FieldProActivatedBy: models.SourceTrial,
				models.FieldProActivatedAt: models.FormatISO(s.now()),
				models.FieldTrialExpiresAt: expiresAt,
			}
			if err := s.userRepo.Update(ctx, u.ID, fields); err != nil {
				return fail(err)
			}
			res.Activated++
			s.publish(ctx, EventTrialActivated, LicenseEvent{
				UserID:         u.ID,
				Email:          email,
				Operator:       operator,
				Source:         models.SourceTrial,
				TrialExpiresAt: expiresAt,
			})
			continue
		}

		if s.dedupPending {
			exists, err := s.pendingRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return fail(err)
			}
			if exists {
				res.Pending++
				continue
			}
		}
		now := s.now()
		pending := &models.PendingActivation{
			Email:          email,
			OrderID:        "TRIAL-" + strconv.FormatInt(now.UnixMilli(), 10),
			TrialExpiresAt: expiresAt,
			CreatedAt:      models.FormatISO(now),
			Status:         models.PendingStatus,
			Source:         models.SourceTrial,
		}
		if _, err := s.pendingRepo.Create(ctx, pending); err != nil {
			return fail(err)
		}
		res.Pending++
		s.publish(ctx, EventPendingCreated, LicenseEvent{
			Email:          email,
			Operator:       operator,
			Source:         models.SourceTrial,
			TrialExpiresAt: expiresAt,
			OrderID:        pending.OrderID,
		})
	}

	res.Summary = fmt.Sprintf("%d ativados, %d pendentes", res.Activated, res.Pending)
	res.Notice = SuccessNotice("✅ Teste ativado! " + res.Summary)
	res.ClearInput = true
	s.logger.Info("Trials activated",
		zap.String("operator", operator),
		zap.Int("activated", res.Activated),
		zap.Int("pending", res.Pending),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// OpenUserDetail opens the detail editor on a snapshot record.
func (s *licenseService) OpenUserDetail(ctx context.Context, operator, userID string) (*DetailView, error) {
	var d *DetailView
	err := s.withSession(ctx, operator, func(st *SessionState) error {
		if err := s.ensureLoaded(ctx, st); err != nil {
			return err
		}
		u, err := s.findUser(st, userID)
		if err != nil {
			return err
		}
		st.SelectedID = userID
		d = s.detail(u)
		return nil
	})
	return d, err
}

func (s *licenseService) CloseUserDetail(ctx context.Context, operator string) error {
	return s.withSession(ctx, operator, func(st *SessionState) error {
		st.SelectedID = ""
		return nil
	})
}

// SaveUserDetails writes the scalar billing fields and mirrors them into the
// snapshot. No reload is performed.
func (s *licenseService) SaveUserDetails(ctx context.Context, operator, userID string, req models.UpdateUserDetailsRequest) (*ActionResult, error) {
	if !models.IsManualSource(req.ProActivatedBy) {
		return nil, withNotice(WarningNotice("⚠️ Origem de ativação inválida"),
			fmt.Errorf("%w: %q", ErrInvalidActivationSource, req.ProActivatedBy))
	}
	var monthly interface{}
	monthlyKey := "nil"
	if req.MonthlyValue != nil {
		if *req.MonthlyValue < 0 || math.IsNaN(*req.MonthlyValue) || math.IsInf(*req.MonthlyValue, 0) {
			return nil, withNotice(WarningNotice("⚠️ Valor mensal inválido"), ErrInvalidMonthlyValue)
		}
		monthly = *req.MonthlyValue
		monthlyKey = strconv.FormatFloat(*req.MonthlyValue, 'f', -1, 64)
	}

	key := strings.Join([]string{operator, "details", userID, req.ContactInfo, req.Notes, req.ProActivatedBy, monthlyKey}, "|")
	v, err := s.collapse(key, func() (interface{}, error) {
		var res *ActionResult
		err := s.withSession(ctx, operator, func(st *SessionState) error {
			u, err := s.selectedUser(st, userID)
			if err != nil {
				return err
			}
			fields := map[string]interface{}{
				models.FieldContactInfo:    req.ContactInfo,
				models.FieldMonthlyValue:   monthly,
				models.FieldNotes:          req.Notes,
				models.FieldProActivatedBy: req.ProActivatedBy,
			}
			if err := s.userRepo.Update(ctx, userID, fields); err != nil {
				s.logger.Error("Failed to save user details", zap.String("user_id", userID), zap.Error(err))
				return withNotice(ErrorNotice("❌ Erro ao salvar dados"), userStoreError("save details", err))
			}

			u.ContactInfo = req.ContactInfo
			u.Notes = req.Notes
			u.ProActivatedBy = req.ProActivatedBy
			u.MonthlyValue = nil
			if req.MonthlyValue != nil {
				mv := *req.MonthlyValue
				u.MonthlyValue = &mv
			}

			s.logger.Info("User details saved", zap.String("operator", operator), zap.String("email", u.Email))
			ev := LicenseEvent{UserID: userID, Email: u.Email, Operator: operator, Source: req.ProActivatedBy}
			if req.MonthlyValue != nil {
				ev.Value = *req.MonthlyValue
			}
			s.publish(ctx, EventDetailsUpdated, ev)

			res = &ActionResult{
				Notice:    SuccessNotice("✅ Dados salvos!"),
				Dashboard: s.dashboard(st),
				Detail:    s.detail(u),
			}
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*ActionResult), nil
}

// AddPayment appends a payment to the ledger of the open user and writes the
// whole list back.
func (s *licenseService) AddPayment(ctx context.Context, operator, userID string, req models.AddPaymentRequest) (*ActionResult, error) {
	if strings.TrimSpace(req.Date) == "" || !(req.Value > 0) || math.IsInf(req.Value, 0) {
		return nil, withNotice(WarningNotice("⚠️ Informe a data e um valor positivo!"), ErrInvalidPayment)
	}

	key := strings.Join([]string{operator, "payment-add", userID, req.Date,
		strconv.FormatFloat(req.Value, 'f', -1, 64), req.Note}, "|")
	v, err := s.collapse(key, func() (interface{}, error) {
		var res *ActionResult
		err := s.withSession(ctx, operator, func(st *SessionState) error {
			u, err := s.selectedUser(st, userID)
			if err != nil {
				return err
			}
			payments := make([]models.Payment, 0, len(u.Payments)+1)
			payments = append(payments, u.Payments...)
			payments = append(payments, models.Payment{
				Date:    req.Date,
				Value:   req.Value,
				Note:    req.Note,
				AddedAt: models.FormatISO(s.now()),
			})
			if err := s.userRepo.Update(ctx, userID, map[string]interface{}{models.FieldPayments: payments}); err != nil {
				s.logger.Error("Failed to add payment", zap.String("user_id", userID), zap.Error(err))
				return withNotice(ErrorNotice("❌ Erro ao adicionar pagamento"), userStoreError("add payment", err))
			}
			u.Payments = payments

			s.publish(ctx, EventPaymentAdded, LicenseEvent{UserID: userID, Email: u.Email, Operator: operator, Value: req.Value})
			res = &ActionResult{
				Notice:    SuccessNotice("✅ Pagamento adicionado!"),
				Dashboard: s.dashboard(st),
				Detail:    s.detail(u),
			}
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*ActionResult), nil
}

// RemovePayment removes the payment at index of the stored list, not of the
// sorted ledger, and writes the whole list back.
func (s *licenseService) RemovePayment(ctx context.Context, operator, userID string, index int, confirmed bool) (*ActionResult, error) {
	key := fmt.Sprintf("%s|payment-remove|%s|%d|%t", operator, userID, index, confirmed)
	v, err := s.collapse(key, func() (interface{}, error) {
		var res *ActionResult
		err := s.withSession(ctx, operator, func(st *SessionState) error {
			u, err := s.selectedUser(st, userID)
			if err != nil {
				return err
			}
			if index < 0 || index >= len(u.Payments) {
				return withNotice(WarningNotice("⚠️ Pagamento não encontrado"),
					fmt.Errorf("%w: index %d", ErrPaymentNotFound, index))
			}
			if !confirmed {
				return confirmationRequired("Remover este pagamento?")
			}

			removed := u.Payments[index]
			payments := make([]models.Payment, 0, len(u.Payments)-1)
			payments = append(payments, u.Payments[:index]...)
			payments = append(payments, u.Payments[index+1:]...)
			if err := s.userRepo.Update(ctx, userID, map[string]interface{}{models.FieldPayments: payments}); err != nil {
				s.logger.Error("Failed to remove payment", zap.String("user_id", userID), zap.Error(err))
				return withNotice(ErrorNotice("❌ Erro ao remover pagamento"), userStoreError("remove payment", err))
			}
			u.Payments = payments

			s.publish(ctx, EventPaymentRemoved, LicenseEvent{UserID: userID, Email: u.Email, Operator: operator, Value: removed.Value})
			res = &ActionResult{
				Notice:    SuccessNotice("✅ Pagamento removido!"),
				Dashboard: s.dashboard(st),
				Detail:    s.detail(u),
			}
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*ActionResult), nil
}

func (s *licenseService) Summary(ctx context.Context, operator string) (*SummaryView, error) {
	var sum *SummaryView
	err := s.withSession(ctx, operator, func(st *SessionState) error {
		if err := s.ensureLoaded(ctx, st); err != nil {
			return err
		}
		now := s.now()
		sum = &SummaryView{
			Stats:     ComputeStats(st.Users, now),
			Financial: SummarizeFinancials(st.Users, now),
		}
		return nil
	})
	return sum, err
}

func (s *licenseService) EndSession(ctx context.Context, operator string) error {
	unlock := s.lock(operator)
	defer unlock()
	if err := s.sessions.Delete(ctx, operator); err != nil {
		return fmt.Errorf("failed to delete session for '%s': %w", operator, err)
	}
	s.logger.Info("Session ended", zap.String("operator", operator))
	return nil
}
