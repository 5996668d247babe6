package domain

// Action names a business operation subject to role checks.
type Action string

const (
	ActionSubmitProduct   Action = "submit_product"
	ActionApproveProduct  Action = "approve_product"
	ActionRejectProduct   Action = "reject_product"
	ActionSubmitKYC       Action = "submit_kyc"
	ActionApproveKYC      Action = "approve_kyc"
	ActionRejectKYC       Action = "reject_kyc"
	ActionCreateOrder     Action = "create_order"
	ActionAdvanceOrder    Action = "advance_order"
	ActionApproveOrder    Action = "approve_order"
	ActionRejectOrder     Action = "reject_order"
	ActionBlockUser       Action = "block_user"
	ActionUnblockUser     Action = "unblock_user"
	ActionDeleteUser      Action = "delete_user"
	ActionResetPassword   Action = "reset_password"
	ActionMarkPayoutPaid  Action = "mark_payout_paid"
	ActionViewDashboard   Action = "view_dashboard"
	ActionReceiveNotices  Action = "receive_notices"
	ActionListAllEntities Action = "list_all_entities"
)

// permissionMatrix is the single source of truth for {role x action}.
// Role checks go through Can; handlers never compare role strings.
var permissionMatrix = map[Role]map[Action]bool{
	RoleSeller: {
		ActionSubmitKYC:    true,
		ActionCreateOrder:  true,
		ActionAdvanceOrder: true,
	},
	RoleSupplier: {
		ActionSubmitKYC:     true,
		ActionSubmitProduct: true,
		ActionAdvanceOrder:  true,
	},
	RoleAdmin: {
		ActionApproveProduct:  true,
		ActionRejectProduct:   true,
		ActionApproveKYC:      true,
		ActionRejectKYC:       true,
		ActionApproveOrder:    true,
		ActionRejectOrder:     true,
		ActionBlockUser:       true,
		ActionUnblockUser:     true,
		ActionResetPassword:   true,
		ActionMarkPayoutPaid:  true,
		ActionViewDashboard:   true,
		ActionReceiveNotices:  true,
		ActionListAllEntities: true,
	},
	RoleSuperadmin: {
		ActionApproveProduct:  true,
		ActionRejectProduct:   true,
		ActionApproveKYC:      true,
		ActionRejectKYC:       true,
		ActionApproveOrder:    true,
		ActionRejectOrder:     true,
		ActionBlockUser:       true,
		ActionUnblockUser:     true,
		ActionDeleteUser:      true,
		ActionResetPassword:   true,
		ActionMarkPayoutPaid:  true,
		ActionViewDashboard:   true,
		ActionReceiveNotices:  true,
		ActionListAllEntities: true,
	},
}

// Can reports whether the role is permitted to perform the action.
func Can(role Role, action Action) bool {
	return permissionMatrix[role][action]
}
