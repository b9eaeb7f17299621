package membership

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/comfund/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is the access role of a member account
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// MemberStatus is the approval state of a membership application
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "Pending"
	MemberStatusApproved MemberStatus = "Approved"
	MemberStatusRejected MemberStatus = "Rejected"
)

// IsValid checks if the status is known
func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusPending, MemberStatusApproved, MemberStatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether the status can be applied by a reviewer
func (s MemberStatus) IsDecision() bool {
	return s == MemberStatusApproved || s == MemberStatusRejected
}

// String returns the string representation of MemberStatus
func (s MemberStatus) String() string {
	return string(s)
}

// DefaultPosition is the title given to ordinary members
const DefaultPosition = "Member"

// DefaultMessageSender is the sender label shown on admin messages
const DefaultMessageSender = "Admin"

const maxMessageLength = 2000

// BcryptCost is the work factor used for new password hashes
var BcryptCost = 12

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	paidMonthRegex  = regexp.MustCompile(`^(January|February|March|April|May|June|July|August|September|October|November|December) [0-9]{4}$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Permissions are the feature grants of a member.
// Admins implicitly hold every permission.
type Permissions struct {
	ViewFund       bool `json:"viewFund"`
	PostActivities bool `json:"postActivities"`
	PostNotices    bool `json:"postNotices"`
	ManageMembers  bool `json:"manageMembers"`
}

// DefaultPermissions returns the grants of a freshly registered member
func DefaultPermissions() Permissions {
	return Permissions{ViewFund: true}
}

// Permission names a single grant
type Permission string

const (
	PermissionViewFund       Permission = "viewFund"
	PermissionPostActivities Permission = "postActivities"
	PermissionPostNotices    Permission = "postNotices"
	PermissionManageMembers  Permission = "manageMembers"
)

// Has reports whether the grant set contains the permission
func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermissionViewFund:
		return p.ViewFund
	case PermissionPostActivities:
		return p.PostActivities
	case PermissionPostNotices:
		return p.PostNotices
	case PermissionManageMembers:
		return p.ManageMembers
	}
	return false
}

// List returns the granted permission names
func (p Permissions) List() []string {
	out := make([]string, 0, 4)
	for _, perm := range []Permission{PermissionViewFund, PermissionPostActivities, PermissionPostNotices, PermissionManageMembers} {
		if p.Has(perm) {
			out = append(out, string(perm))
		}
	}
	return out
}

// Message is an admin note delivered to a member. Messages are append-only.
type Message struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
	Sender string    `json:"sender"`
}

// Member is the aggregate root for an organization member account
type Member struct {
	shared.BaseAggregateRoot
	Name            string
	Email           string
	Phone           string
	Address         string
	BloodGroup      string
	PasswordHash    string
	Role            Role
	Position        string
	Status          MemberStatus
	Approved        bool
	MonthlyAmount   decimal.Decimal
	ManualDue       *decimal.Decimal
	ManualTotalPaid *decimal.Decimal
	PaidMonths      []string
	Permissions     Permissions
	JoiningDate     time.Time
	Messages        []Message
}

// NewMember registers a new pending member
func NewMember(name, email, password string, monthlyAmount decimal.Decimal) (*Member, error) {
	name = normalizeSpaces(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if monthlyAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Monthly amount cannot be negative")
	}

	m := &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Role:              RoleMember,
		Position:          DefaultPosition,
		Status:            MemberStatusPending,
		Approved:          false,
		MonthlyAmount:     monthlyAmount,
		PaidMonths:        make([]string, 0),
		Permissions:       DefaultPermissions(),
		Messages:          make([]Message, 0),
	}
	m.JoiningDate = m.CreatedAt
	if err := m.SetPassword(password); err != nil {
		return nil, err
	}

	m.AddDomainEvent(NewMemberRegisteredEvent(m))
	return m, nil
}

// NewAdmin creates an approved administrator account
func NewAdmin(name, email, password string) (*Member, error) {
	m, err := NewMember(name, email, password, decimal.Zero)
	if err != nil {
		return nil, err
	}
	m.Role = RoleAdmin
	m.Status = MemberStatusApproved
	m.Approved = true
	m.Position = "Administrator"
	m.Permissions = Permissions{ViewFund: true, PostActivities: true, PostNotices: true, ManageMembers: true}
	return m, nil
}

// SetStatus applies a review decision. Members can be re-reviewed any number
// of times; status and the approved flag always change together.
func (m *Member) SetStatus(decision MemberStatus) error {
	if !decision.IsDecision() {
		return shared.NewDomainError("INVALID_STATUS", "Member status decision must be Approved or Rejected")
	}
	if m.Status == decision {
		return nil
	}

	old := m.Status
	m.Status = decision
	m.Approved = decision == MemberStatusApproved
	m.Touch()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberStatusChangedEvent(m, old))
	return nil
}

// IsApproved reports whether the member passed review
func (m *Member) IsApproved() bool {
	return m.Status == MemberStatusApproved && m.Approved
}

// IsAdmin reports whether the member holds the admin role
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Can reports whether the member holds a permission
func (m *Member) Can(perm Permission) bool {
	if m.IsAdmin() {
		return true
	}
	return m.IsApproved() && m.Permissions.Has(perm)
}

// GrantedPermissions returns the effective permission names
func (m *Member) GrantedPermissions() []string {
	if m.IsAdmin() {
		return Permissions{ViewFund: true, PostActivities: true, PostNotices: true, ManageMembers: true}.List()
	}
	return m.Permissions.List()
}

// JoinedAt returns the date membership time is counted from
func (m *Member) JoinedAt() time.Time {
	if m.JoiningDate.IsZero() {
		return m.CreatedAt
	}
	return m.JoiningDate
}

// IsCommittee reports whether the member holds a titled position
func (m *Member) IsCommittee() bool {
	return m.IsApproved() && !strings.EqualFold(m.Position, DefaultPosition) && m.Position != ""
}

// SetPassword replaces the password hash
func (m *Member) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	m.PasswordHash = string(hash)
	m.Touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (m *Member) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) == nil
}

// Contact holds the self-editable profile fields
type Contact struct {
	Name       string
	Phone      string
	Address    string
	BloodGroup string
}

// UpdateContact changes the contact details of the member
func (m *Member) UpdateContact(c Contact) error {
	name := normalizeSpaces(c.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	if len(c.Phone) > 30 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 30 characters")
	}
	m.Name = name
	m.Phone = strings.TrimSpace(c.Phone)
	m.Address = strings.TrimSpace(c.Address)
	m.BloodGroup = strings.ToUpper(strings.TrimSpace(c.BloodGroup))
	m.Touch()
	return nil
}

// SetPosition sets the committee title. An empty title resets to the default.
func (m *Member) SetPosition(position string) {
	position = normalizeSpaces(position)
	if position == "" {
		position = DefaultPosition
	}
	m.Position = cases.Title(language.English, cases.NoLower).String(position)
	m.Touch()
}

// SetMonthlyAmount changes the expected monthly due
func (m *Member) SetMonthlyAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Monthly amount cannot be negative")
	}
	m.MonthlyAmount = amount
	m.Touch()
	return nil
}

// SetManualDue overrides the computed due. Nil clears the override.
func (m *Member) SetManualDue(amount *decimal.Decimal) {
	m.ManualDue = copyDecimal(amount)
	m.Touch()
}

// SetManualTotalPaid overrides the computed paid total. Nil clears the override.
func (m *Member) SetManualTotalPaid(amount *decimal.Decimal) {
	m.ManualTotalPaid = copyDecimal(amount)
	m.Touch()
}

// SetPaidMonths replaces the list of months marked as paid ("January 2025")
func (m *Member) SetPaidMonths(months []string) error {
	out := make([]string, 0, len(months))
	for _, month := range months {
		month = normalizeSpaces(month)
		if !paidMonthRegex.MatchString(month) {
			return shared.NewDomainError("INVALID_MONTH", "Paid month must look like \"January 2025\"")
		}
		if !slices.Contains(out, month) {
			out = append(out, month)
		}
	}
	m.PaidMonths = out
	m.Touch()
	return nil
}

// SetPermissions replaces the permission grants
func (m *Member) SetPermissions(p Permissions) {
	m.Permissions = p
	m.Touch()
}

// SetRole changes the account role
func (m *Member) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be Admin or Member")
	}
	m.Role = role
	m.Touch()
	return nil
}

// SetJoiningDate moves the date dues are counted from
func (m *Member) SetJoiningDate(date time.Time) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Joining date is required")
	}
	m.JoiningDate = date
	m.Touch()
	return nil
}

// MarkProfileUpdated records a profile update event after an admin edit
func (m *Member) MarkProfileUpdated() {
	m.IncrementVersion()
	m.AddDomainEvent(NewMemberProfileUpdatedEvent(m))
}

// AppendMessage adds a message to the member's log
func (m *Member) AppendMessage(text, sender string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, shared.NewDomainError("INVALID_MESSAGE", "Message text cannot be empty")
	}
	if len(text) > maxMessageLength {
		return Message{}, shared.NewDomainError("INVALID_MESSAGE", "Message text is too long")
	}
	sender = strings.TrimSpace(sender)
	if sender == "" {
		sender = DefaultMessageSender
	}

	msg := Message{
		ID:     uuid.New(),
		Text:   text,
		Date:   time.Now(),
		Sender: sender,
	}
	m.Messages = append(m.Messages, msg)
	m.AddDomainEvent(NewMemberMessagedEvent(m, msg))
	return msg, nil
}

// MessagesByRecency returns the message log newest first
func (m *Member) MessagesByRecency() []Message {
	out := slices.Clone(m.Messages)
	slices.SortStableFunc(out, func(a, b Message) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func normalizeSpaces(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
