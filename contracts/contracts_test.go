package contracts_test

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/contracts"
	"github.com/tranvictor/nftstake/metadata"
)

const (
	collectionAddr = "0x0A337Be2EA71E3aeA9C82D45b036aC6a6123B6D0"
	stakingAddr    = "0x51697170F78136c8d143B0013Cf5B229aDe70757"
	tokenAddr      = "0xa346D51362E2cF7c09cf38Ccf5E2b208B071e71b"
	owner          = "0x00000000000000000000000000000000000000aa"
)

// fakeReader serves contract outputs keyed by method name. ReadContractWithABI
// packs and unpacks through the real ABI so type handling matches a node.
type fakeReader struct {
	outputs map[string][]interface{}
	raw     map[string][]interface{}
	calls   []string
}

func (f *fakeReader) ReadContractToValues(caddr string, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s.%s", caddr, method))
	if v, ok := f.raw[method]; ok {
		return v, nil
	}
	out, ok := f.outputs[method]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	packed, err := a.Methods[method].Outputs.Pack(out...)
	if err != nil {
		return nil, err
	}
	return a.Unpack(method, packed)
}

func (f *fakeReader) ReadContractWithABI(result interface{}, caddr string, a *abi.ABI, method string, args ...interface{}) error {
	f.calls = append(f.calls, fmt.Sprintf("%s.%s", caddr, method))
	out, ok := f.outputs[method]
	if !ok {
		return errors.New("execution reverted")
	}
	packed, err := a.Methods[method].Outputs.Pack(out...)
	if err != nil {
		return err
	}
	return a.UnpackIntoInterface(result, method, packed)
}

func (f *fakeReader) ERC20Balance(caddr string, user string) (*big.Int, error) {
	return big.NewInt(500), nil
}

func (f *fakeReader) ERC20Decimal(caddr string) (uint64, error) { return 18, nil }
func (f *fakeReader) ERC20Symbol(caddr string) (string, error)  { return "AURA", nil }

func TestERC721TokenURI(t *testing.T) {
	r := &fakeReader{outputs: map[string][]interface{}{"tokenURI": {"ipfs://cid/1.json"}}}
	c := contracts.NewERC721(collectionAddr, r)

	uri, err := c.TokenURI(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "ipfs://cid/1.json", uri)
	assert.Equal(t, []string{collectionAddr + ".tokenURI"}, r.calls)
}

func TestERC721TokenURIMalformed(t *testing.T) {
	r := &fakeReader{raw: map[string][]interface{}{"tokenURI": {"a", "b"}}}
	c := contracts.NewERC721(collectionAddr, r)

	_, err := c.TokenURI(big.NewInt(1))
	assert.ErrorIs(t, err, metadata.ErrMalformedURIShape)
}

func TestERC721TokenURIReadFailure(t *testing.T) {
	c := contracts.NewERC721(collectionAddr, &fakeReader{})
	_, err := c.TokenURI(big.NewInt(1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, metadata.ErrMalformedURIShape)
}

func TestERC721Approval(t *testing.T) {
	r := &fakeReader{outputs: map[string][]interface{}{"isApprovedForAll": {true}}}
	c := contracts.NewERC721(collectionAddr, r)

	approved, err := c.IsApprovedForAll(owner, stakingAddr)
	require.NoError(t, err)
	assert.True(t, approved)

	data, err := c.SetApprovalForAllData(stakingAddr, true)
	require.NoError(t, err)
	method, err := common.GetERC721ABI().MethodById(data[:4])
	require.NoError(t, err)
	assert.Equal(t, "setApprovalForAll", method.Name)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, gethcommon.HexToAddress(stakingAddr), args[0])
	assert.Equal(t, true, args[1])
}

func TestStakingGetStakeInfo(t *testing.T) {
	r := &fakeReader{outputs: map[string][]interface{}{
		"getStakeInfo": {[]*big.Int{big.NewInt(4), big.NewInt(9)}, big.NewInt(1500)},
	}}
	s := contracts.NewStakingContract(stakingAddr, r)

	info, err := s.GetStakeInfo(owner)
	require.NoError(t, err)
	require.Len(t, info.Staked, 2)
	assert.Equal(t, "4", info.Staked[0].String())
	assert.Equal(t, "9", info.Staked[1].String())
	assert.Equal(t, "1500", info.Rewards.String())
}

func TestStakingGetStakeInfoBadShape(t *testing.T) {
	r := &fakeReader{raw: map[string][]interface{}{"getStakeInfo": {"nope"}}}
	_, err := contracts.NewStakingContract(stakingAddr, r).GetStakeInfo(owner)
	assert.Error(t, err)
}

func TestStakingReads(t *testing.T) {
	r := &fakeReader{outputs: map[string][]interface{}{
		"rewardToken":           {gethcommon.HexToAddress(tokenAddr)},
		"getRewardsPerUnitTime": {big.NewInt(10)},
		"getTimeUnit":           {big.NewInt(3600)},
	}}
	s := contracts.NewStakingContract(stakingAddr, r)

	token, err := s.RewardToken()
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, token)

	rate, err := s.RewardsPerUnitTime()
	require.NoError(t, err)
	assert.Equal(t, int64(10), rate.Int64())

	unit, err := s.TimeUnit()
	require.NoError(t, err)
	assert.Equal(t, int64(3600), unit.Int64())
}

func TestStakingCalldata(t *testing.T) {
	s := contracts.NewStakingContract(stakingAddr, &fakeReader{})
	stakingABI := common.GetStakingABI()

	data, err := s.StakeData([]*big.Int{big.NewInt(3)})
	require.NoError(t, err)
	method, err := stakingABI.MethodById(data[:4])
	require.NoError(t, err)
	assert.Equal(t, "stake", method.Name)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, "3", args[0].([]*big.Int)[0].String())

	data, err = s.WithdrawData([]*big.Int{big.NewInt(3)})
	require.NoError(t, err)
	method, err = stakingABI.MethodById(data[:4])
	require.NoError(t, err)
	assert.Equal(t, "withdraw", method.Name)

	data, err = s.ClaimRewardsData()
	require.NoError(t, err)
	assert.Len(t, data, 4)

	_, err = s.StakeData(nil)
	assert.Error(t, err)
	_, err = s.WithdrawData([]*big.Int{})
	assert.Error(t, err)
}

func TestERC20(t *testing.T) {
	tk := contracts.NewERC20(tokenAddr, &fakeReader{})
	balance, err := tk.Balance(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.Int64())

	symbol, err := tk.Symbol()
	require.NoError(t, err)
	assert.Equal(t, "AURA", symbol)

	decimals, err := tk.Decimals()
	require.NoError(t, err)
	assert.Equal(t, uint64(18), decimals)
	assert.Equal(t, tokenAddr, tk.Address())
}
