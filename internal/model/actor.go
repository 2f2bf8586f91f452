package model

type ActorKind string

const (
	ActorStudent ActorKind = "student"
	ActorStaff   ActorKind = "staff"
	ActorAdmin   ActorKind = "admin"
)

func (k ActorKind) Valid() bool {
	switch k {
	case ActorStudent, ActorStaff, ActorAdmin:
		return true
	}
	return false
}

// CanRequestDistribution reports whether this kind of actor may file a distribution request.
func (k ActorKind) CanRequestDistribution() bool {
	return k == ActorStudent || k == ActorStaff
}

// Actor is the already-authenticated party performing an operation.
type Actor struct {
	ID   string
	Kind ActorKind
}

// CanManageStock reports whether this kind of actor may edit the catalog and correct stock by hand.
func (k ActorKind) CanManageStock() bool {
	return k == ActorStaff || k == ActorAdmin
}
