package channels

import (
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
	"github.com/yourusername/gpay-transactions/models"
)

const (
	// stellarDecimals is the number of minor-unit digits of every Stellar asset.
	stellarDecimals = 7
	maxMemoText     = 28
)

type accountLoader interface {
	AccountDetail(request horizonclient.AccountRequest) (horizon.Account, error)
}

// StellarGateway disburses transfers as Stellar payments. It builds unsigned
// envelopes; signing and submission happen with the holder of the source key.
type StellarGateway struct {
	client            accountLoader
	networkPassphrase string
	// Issuers maps credit asset codes to their issuing account.
	Issuers map[string]string
}

func NewStellarGateway(horizonURL, networkPassphrase string, issuers map[string]string) *StellarGateway {
	return &StellarGateway{
		client:            &horizonclient.Client{HorizonURL: horizonURL},
		networkPassphrase: networkPassphrase,
		Issuers:           issuers,
	}
}

func (s *StellarGateway) Name() string {
	return "stellar"
}

func (s *StellarGateway) FormatAmount(amount models.Amount) string {
	return amount.Decimal(stellarDecimals).StringFixed(stellarDecimals)
}

func (s *StellarGateway) ValidateAccount(accountID string) error {
	_, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("invalid or non-existent account: %w", err)
	}
	return nil
}

// BuildPayout returns the base64 XDR envelope paying transfer.Amount from
// sourceAccount to transfer.RecipientID.
func (s *StellarGateway) BuildPayout(transfer *models.Transfer, sourceAccount string) (string, error) {
	account, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: sourceAccount})
	if err != nil {
		return "", fmt.Errorf("failed to load source account: %w", err)
	}

	tx, err := s.BuildPaymentTx(&account, transfer.RecipientID, transfer.Currency, s.FormatAmount(transfer.Amount), transfer.ID)
	if err != nil {
		return "", err
	}

	xdr, err := tx.Base64()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction to XDR: %w", err)
	}
	return xdr, nil
}

// BuildPaymentTx builds a single-payment transaction. The memo carries the
// transfer id so the payout can be matched when it settles; ids longer than a
// text memo allows are left out.
func (s *StellarGateway) BuildPaymentTx(source txnbuild.Account, destination, assetCode, amount, memo string) (*txnbuild.Transaction, error) {
	asset, err := s.asset(assetCode)
	if err != nil {
		return nil, err
	}

	params := txnbuild.TransactionParams{
		SourceAccount:        source,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewInfiniteTimeout()},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: destination,
				Amount:      amount,
				Asset:       asset,
			},
		},
	}
	if memo != "" && len(memo) <= maxMemoText {
		params.Memo = txnbuild.MemoText(memo)
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

func (s *StellarGateway) asset(code string) (txnbuild.Asset, error) {
	if code == "XLM" {
		return txnbuild.NativeAsset{}, nil
	}
	issuer, ok := s.Issuers[code]
	if !ok {
		return nil, fmt.Errorf("no issuer configured for asset %s", code)
	}
	return txnbuild.CreditAsset{Code: code, Issuer: issuer}, nil
}
