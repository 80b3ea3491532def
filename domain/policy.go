package domain

// Task visibility and mutation policy. All three checks are pure: they
// never touch storage and decide from the actor, the task snapshot and,
// for edits, the proposed patch.
//
// Every function starts with a tenant guard. Callers are expected to
// have scoped their reads already, but a task and an actor from
// different tenants must never produce anything except a denial here.

// CanSeeTask reports whether the actor may read the task at all.
// ADMIN sees the whole tenant, LEADER their area, USER their own tasks.
func CanSeeTask(actor Actor, t Task) bool {
	if t.TenantID != actor.TenantID {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleLeader:
		return t.Area == actor.Area
	case RoleUser:
		return NormalizeEmail(t.ResponsibleEmail) == NormalizeEmail(actor.Email)
	default:
		return false
	}
}

// CanEditTask reports whether the actor may apply the patch to the task.
// Leaders cannot move a task out of their area; users cannot reassign a
// task or change its area, even on their own tasks.
func CanEditTask(actor Actor, t Task, patch TaskPatch) bool {
	if !CanSeeTask(actor, t) {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleLeader:
		if patch.Area != nil && *patch.Area != actor.Area {
			return false
		}
		return true
	case RoleUser:
		if patch.ResponsibleEmail != nil && NormalizeEmail(*patch.ResponsibleEmail) != NormalizeEmail(actor.Email) {
			return false
		}
		if patch.Area != nil && *patch.Area != actor.Area {
			return false
		}
		return true
	default:
		return false
	}
}

// CanDeleteTask reports whether the actor may soft-delete the task.
// Non-admins additionally need the per-user delete permission.
func CanDeleteTask(actor Actor, t Task) bool {
	if t.TenantID != actor.TenantID {
		return false
	}
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleLeader:
		return actor.CanDelete && t.Area == actor.Area
	case RoleUser:
		return actor.CanDelete && NormalizeEmail(t.ResponsibleEmail) == NormalizeEmail(actor.Email)
	default:
		return false
	}
}
