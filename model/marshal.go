package model

import (
	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/chriso345/cnvx/internal/version"
	"github.com/chriso345/cnvx/logger"
)

// snapshot is the serialized form of a Model. Variables, constraints and
// objectives are stored as three independently encoded blocks so they can be
// encoded and decoded in parallel.
type snapshot struct {
	Version     string
	Vars        []byte
	Constraints []byte
	Objectives  []byte
	Active      int
}

type sTerm struct {
	Coeff float64
	Var   int
}

type sExpr struct {
	Terms    []sTerm
	Constant float64
}

type sVar struct {
	Name         string
	Lower, Upper float64
	Kind         uint8
}

type sConstraint struct {
	Expr sExpr
	Rel  uint8
	RHS  float64
}

type sObjective struct {
	Sense uint8
	Expr  sExpr
	Name  string
}

func flattenExpr(e LinExpr) sExpr {
	out := sExpr{Constant: e.constant}
	out.Terms = make([]sTerm, len(e.terms))
	for i, t := range e.terms {
		out.Terms[i] = sTerm{Coeff: t.Coeff, Var: t.Var.index}
	}
	return out
}

func (m *Model) rebuildExpr(e sExpr) LinExpr {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{Coeff: t.Coeff, Var: Variable{m: m, index: t.Var}}
	}
	return LinExpr{terms: terms, constant: e.Constant}
}

// ToBytes serializes the model to a cbor snapshot. The snapshot records the
// model only, never solver state; it is a construction-side artifact that a
// generator process can hand to a solving process.
func (m *Model) ToBytes() ([]byte, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}

	// the three blocks are independent; encode them concurrently.
	var vars, cons, objs []byte
	var g errgroup.Group
	g.Go(func() error {
		sv := make([]sVar, len(m.vars))
		for i, v := range m.vars {
			sv[i] = sVar{Name: v.name, Lower: v.lower, Upper: v.upper, Kind: uint8(v.kind)}
		}
		var err error
		vars, err = enc.Marshal(sv)
		return err
	})
	g.Go(func() error {
		sc := make([]sConstraint, len(m.constraints))
		for i, c := range m.constraints {
			sc[i] = sConstraint{Expr: flattenExpr(c.expr), Rel: uint8(c.rel), RHS: c.rhs}
		}
		var err error
		cons, err = enc.Marshal(sc)
		return err
	})
	g.Go(func() error {
		so := make([]sObjective, len(m.objectives))
		for i, o := range m.objectives {
			so[i] = sObjective{Sense: uint8(o.sense), Expr: flattenExpr(o.expr), Name: o.name}
		}
		var err error
		objs, err = enc.Marshal(so)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "encoding model blocks")
	}

	return enc.Marshal(snapshot{
		Version:     version.Version.String(),
		Vars:        vars,
		Constraints: cons,
		Objectives:  objs,
		Active:      m.active,
	})
}

// FromBytes reconstructs a model from a snapshot produced by ToBytes.
//
// A version mismatch between the snapshot and the running module is logged
// as a warning; there are no guarantees on cross-version compatibility.
func FromBytes(data []byte) (*Model, error) {
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decoding model snapshot")
	}

	objectVersion, err := semver.Parse(s.Version)
	if err != nil {
		return nil, errors.Wrap(err, "parsing snapshot version")
	}
	if version.Version.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().
			Str("binary", version.Version.String()).
			Str("snapshot", objectVersion.String()).
			Msg("cnvx version mismatch with model snapshot. there are no guarantees on compatibility")
	}

	m := New()

	var sv []sVar
	var sc []sConstraint
	var so []sObjective
	var g errgroup.Group
	g.Go(func() error { return cbor.Unmarshal(s.Vars, &sv) })
	g.Go(func() error { return cbor.Unmarshal(s.Constraints, &sc) })
	g.Go(func() error { return cbor.Unmarshal(s.Objectives, &so) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "decoding model blocks")
	}

	m.vars = make([]variable, len(sv))
	for i, v := range sv {
		if Kind(v.Kind) > Binary {
			return nil, errors.Errorf("cnvx: snapshot variable %d: unknown kind %d", i, v.Kind)
		}
		m.vars[i] = variable{name: v.Name, lower: v.Lower, upper: v.Upper, kind: Kind(v.Kind)}
	}
	for i, c := range sc {
		if Relation(c.Rel) > Ge {
			return nil, errors.Errorf("cnvx: snapshot constraint %d: unknown relation %d", i, c.Rel)
		}
		if err := checkIndices(c.Expr, len(m.vars)); err != nil {
			return nil, err
		}
		m.constraints = append(m.constraints, Constraint{expr: m.rebuildExpr(c.Expr), rel: Relation(c.Rel), rhs: c.RHS})
	}
	for i, o := range so {
		if Sense(o.Sense) > SenseMaximize {
			return nil, errors.Errorf("cnvx: snapshot objective %d: unknown sense %d", i, o.Sense)
		}
		if err := checkIndices(o.Expr, len(m.vars)); err != nil {
			return nil, err
		}
		m.objectives = append(m.objectives, Objective{sense: Sense(o.Sense), expr: m.rebuildExpr(o.Expr), name: o.Name})
	}
	if s.Active < -1 || s.Active >= len(m.objectives) {
		return nil, errors.Errorf("cnvx: snapshot active objective %d out of range", s.Active)
	}
	m.active = s.Active
	return m, nil
}

func checkIndices(e sExpr, n int) error {
	for _, t := range e.Terms {
		if t.Var < 0 || t.Var >= n {
			return errors.Wrapf(ErrUnknownVariable, "snapshot term index %d", t.Var)
		}
	}
	return nil
}
