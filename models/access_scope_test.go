package models

import (
	"testing"

	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/stretchr/testify/assert"
)

func TestAccessScope_Allows(t *testing.T) {
	agentID := uint(7)
	otherAgent := uint(8)
	clientUserID := uint(20)

	own := &Debtor{ID: 1, AssignedTo: &agentID, Client: "Acme Bank"}
	foreign := &Debtor{ID: 2, AssignedTo: &otherAgent, Client: "Beta Sacco"}
	unassigned := &Debtor{ID: 3, Client: "Acme Bank"}
	linked := &Debtor{ID: 4, Client: "Acme Bank", ClientUserID: &clientUserID}
	linkedElsewhere := &Debtor{ID: 5, Client: "Acme Bank", ClientUserID: utils.ToPtr(uint(99))}

	tests := []struct {
		name   string
		scope  *AccessScope
		debtor *Debtor
		want   bool
	}{
		{"admin sees everything", &AccessScope{Role: RoleAdmin, UserID: 1}, foreign, true},
		{"admin sees unassigned", &AccessScope{Role: RoleAdmin, UserID: 1}, unassigned, true},
		{"agent sees own", &AccessScope{Role: RoleAgent, UserID: agentID}, own, true},
		{"agent does not see other agent's", &AccessScope{Role: RoleAgent, UserID: agentID}, foreign, false},
		{"agent does not see unassigned", &AccessScope{Role: RoleAgent, UserID: agentID}, unassigned, false},
		{"client sees by name", &AccessScope{Role: RoleClient, UserID: clientUserID, FullName: "Acme Bank"}, own, true},
		{"client does not see other name", &AccessScope{Role: RoleClient, UserID: clientUserID, FullName: "Acme Bank"}, foreign, false},
		{"client sees linked row", &AccessScope{Role: RoleClient, UserID: clientUserID, FullName: "Acme Bank"}, linked, true},
		{"client does not see row linked to another client", &AccessScope{Role: RoleClient, UserID: clientUserID, FullName: "Acme Bank"}, linkedElsewhere, false},
		{"client with empty name sees nothing", &AccessScope{Role: RoleClient, UserID: 50}, &Debtor{Client: ""}, false},
		{"unknown role sees nothing", &AccessScope{Role: "auditor", UserID: 1}, own, false},
		{"empty role sees nothing", &AccessScope{UserID: 1}, own, false},
		{"nil scope sees nothing", nil, own, false},
		{"nil debtor", &AccessScope{Role: RoleAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Allows(tt.debtor))
		})
	}
}

func TestAccessScope_MutationRights(t *testing.T) {
	agentID := uint(7)
	own := &Debtor{AssignedTo: &agentID, Client: "Acme Bank"}

	admin := &AccessScope{Role: RoleAdmin, UserID: 1}
	agent := &AccessScope{Role: RoleAgent, UserID: agentID}
	otherAgent := &AccessScope{Role: RoleAgent, UserID: 99}
	client := &AccessScope{Role: RoleClient, UserID: 3, FullName: "Acme Bank"}

	assert.True(t, admin.CanWriteNotes(own))
	assert.True(t, agent.CanWriteNotes(own))
	assert.False(t, otherAgent.CanWriteNotes(own))
	assert.False(t, client.CanWriteNotes(own), "clients are read-only")

	assert.True(t, admin.CanManageDebtors())
	assert.False(t, agent.CanManageDebtors())
	assert.False(t, client.CanManageDebtors())
}
