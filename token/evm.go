package token

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc20ABI = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"transferFrom","type":"function","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"approve","type":"function","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"deposit","type":"function","stateMutability":"payable","inputs":[],"outputs":[]},
	{"name":"withdraw","type":"function","inputs":[{"name":"value","type":"uint256"}],"outputs":[]}
]`

// EVM is an ERC20 handle backed by an on-chain contract. The transact opts
// carry the signer of the acting account, normally the gate's custody key.
type EVM struct {
	contract *bind.BoundContract
	opts     *bind.TransactOpts
}

func NewEVM(asset common.Address, client *ethclient.Client, opts *bind.TransactOpts) (*EVM, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	return &EVM{
		contract: bind.NewBoundContract(asset, parsed, client, client, client),
		opts:     opts,
	}, nil
}

func (e *EVM) transact(ctx context.Context, value *big.Int, method string, args ...interface{}) error {
	opts := *e.opts
	opts.Context = ctx
	opts.Value = value
	_, err := e.contract.Transact(&opts, method, args...)
	return err
}

func (e *EVM) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	return e.transact(ctx, nil, "transfer", to, amount)
}

func (e *EVM) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error {
	return e.transact(ctx, nil, "transferFrom", from, to, amount)
}

func (e *EVM) Approve(ctx context.Context, spender common.Address, amount *big.Int) error {
	return e.transact(ctx, nil, "approve", spender, amount)
}

func (e *EVM) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// WrappedEVM is an EVM handle to a WETH-style wrap contract.
type WrappedEVM struct {
	*EVM
}

func NewWrappedEVM(asset common.Address, client *ethclient.Client, opts *bind.TransactOpts) (*WrappedEVM, error) {
	inner, err := NewEVM(asset, client, opts)
	if err != nil {
		return nil, err
	}
	return &WrappedEVM{EVM: inner}, nil
}

// Deposit wraps native value by sending it along with the call.
func (w *WrappedEVM) Deposit(ctx context.Context, amount *big.Int) error {
	return w.transact(ctx, amount, "deposit")
}

func (w *WrappedEVM) Withdraw(ctx context.Context, amount *big.Int) error {
	return w.transact(ctx, nil, "withdraw", amount)
}
