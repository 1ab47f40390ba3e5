package access

import "context"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RoleMember Role = "member"
)

type Operation string

const (
	OpSubscriptionListAll Operation = "subscription:list_all"
	OpSubscriptionView    Operation = "subscription:view"
	OpSubscriptionManage  Operation = "subscription:manage"
	OpMembershipView      Operation = "membership:view"
	OpMembershipManage    Operation = "membership:manage"
	OpAttendanceView      Operation = "attendance:view"
	OpPaymentManage       Operation = "payment:manage"
	OpUserManage          Operation = "user:manage"
)

// policy is the static role -> allowed operations table. Operations absent
// for a role are denied. View operations on member-owned data additionally
// require an ownership or assignment match, checked in CanAccess.
var policy = map[Role]map[Operation]bool{
	RoleAdmin: {
		OpSubscriptionListAll: true,
		OpSubscriptionView:    true,
		OpSubscriptionManage:  true,
		OpMembershipView:      true,
		OpMembershipManage:    true,
		OpAttendanceView:      true,
		OpPaymentManage:       true,
		OpUserManage:          true,
	},
	RoleCoach: {
		OpSubscriptionView: true,
		OpMembershipView:   true,
		OpAttendanceView:   true,
	},
	RoleMember: {
		OpSubscriptionView: true,
		OpMembershipView:   true,
		OpAttendanceView:   true,
	},
}

// Allowed reports whether the policy table grants op to role, ignoring
// ownership. Pure lookup.
func Allowed(role Role, op Operation) bool {
	return policy[role][op]
}

// AssignmentChecker answers whether a coach is assigned to a member. The
// coach package provides the implementation.
type AssignmentChecker interface {
	IsAssigned(ctx context.Context, coachID, memberID int) (bool, error)
}

type Checker struct {
	assignments AssignmentChecker
}

func NewChecker(assignments AssignmentChecker) *Checker {
	return &Checker{assignments: assignments}
}

// CanAccess decides whether the caller may perform op against data owned by
// ownerID. Admins pass on the table alone; members must own the target;
// coaches must be assigned to the owning member. ownerID of 0 means the
// operation has no owner scope.
func (c *Checker) CanAccess(ctx context.Context, role Role, callerID int, op Operation, ownerID int) (bool, error) {
	if !Allowed(role, op) {
		return false, nil
	}

	if role == RoleAdmin || ownerID == 0 {
		return true, nil
	}

	switch role {
	case RoleMember:
		return callerID == ownerID, nil
	case RoleCoach:
		if c.assignments == nil {
			return false, nil
		}
		return c.assignments.IsAssigned(ctx, callerID, ownerID)
	}

	return false, nil
}
