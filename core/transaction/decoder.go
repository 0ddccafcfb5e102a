package transaction

// GetData returns an empty entrypoint of the given type to decode into
func GetData(txType TxType) (Data, bool) {
	switch txType {
	case TypeTransfer:
		return &TransferData{}, true
	case TypeTransferFrom:
		return &TransferFromData{}, true
	case TypeApprove:
		return &ApproveData{}, true
	case TypeSend:
		return &SendData{}, true
	case TypeTransferSaleOwnership:
		return &TransferSaleOwnershipData{}, true
	case TypeSetMerkleRoot:
		return &SetMerkleRootData{}, true
	case TypeUpdatePresaleInfo:
		return &UpdatePresaleInfoData{}, true
	case TypeDeposit:
		return &DepositData{}, true
	case TypeDepositPrivateSale:
		return &DepositPrivateSaleData{}, true
	case TypeWithdrawFunds:
		return &WithdrawFundsData{}, true
	case TypeWithdrawUnsoldToken:
		return &WithdrawUnsoldTokenData{}, true
	case TypeStartVesting:
		return &StartVestingData{}, true
	case TypeAddToWhitelist:
		return &AddToWhitelistData{}, true
	case TypeRemoveFromWhitelist:
		return &RemoveFromWhitelistData{}, true
	case TypeTransferWhitelistOwnership:
		return &TransferWhitelistOwnershipData{}, true
	case TypeUpdateRecipient:
		return &UpdateRecipientData{}, true
	case TypeSetStartTime:
		return &SetStartTimeData{}, true
	case TypeTransferVestingOwnership:
		return &TransferVestingOwnershipData{}, true
	case TypeWithdraw:
		return &WithdrawData{}, true
	case TypeLock:
		return &LockData{}, true
	case TypeUnlock:
		return &UnlockData{}, true
	case TypeUpdateLockingConfig:
		return &UpdateLockingConfigData{}, true
	default:
		return nil, false
	}
}
