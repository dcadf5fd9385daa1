package models

import "grunnlag/pkg/domain"

// BehandlingVersjon pins a behandling to the grunnlag version it was decided on.
type BehandlingVersjon struct {
	BehandlingID   domain.BehandlingID `json:"behandlingId"`
	SakID          domain.SakID        `json:"sakId"`
	Hendelsenummer int64               `json:"hendelsenummer"`
	Laast          bool                `json:"laast"`
}

// SakOgRolle is one sak a person appears in.
type SakOgRolle struct {
	SakID domain.SakID `json:"sakId"`
	Rolle Saksrolle    `json:"rolle"`
}
