package constants

const (
	ViewData          = "view_data"
	Invest            = "invest"
	RequestWithdrawal = "request_withdrawal"
	ManageFirms       = "manage_firms"
	ManageInvestments = "manage_investments"
	ManageWithdrawals = "manage_withdrawals"
	ManageBalances    = "manage_balances"
	AssignRole        = "assign_role"
)
