package kvp

import (
	"fmt"
	"strings"
)

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func restoreSnapshotScript(vmName, host, snapshot string) string {
	return fmt.Sprintf("Restore-VMSnapshot -VMName %s -ComputerName %s -Name %s -Confirm:$false",
		quote(vmName), quote(host), quote(snapshot))
}

func startScript(vmName, host string) string {
	return fmt.Sprintf("$vm = Get-VM -Name %s -ComputerName %s; if ($vm.State -ne 'Running') { Start-VM -VM $vm }",
		quote(vmName), quote(host))
}

func stopScript(vmName, host string) string {
	return fmt.Sprintf("Stop-VM -Name %s -ComputerName %s -Force", quote(vmName), quote(host))
}

const itemsTemplate = `$name = %s
$vm = Get-WmiObject -ComputerName %s -Namespace root\virtualization\v2 -Class Msvm_ComputerSystem -Filter "ElementName='$name'"
$kvp = Get-WmiObject -ComputerName %s -Namespace root\virtualization\v2 -Query "Associators of {$vm} Where AssocClass=Msvm_SystemDevice ResultClass=Msvm_KvpExchangeComponent"
foreach ($item in $kvp.GuestIntrinsicExchangeItems) {
    $x = [xml]$item
    $n = ($x.INSTANCE.PROPERTY | Where-Object { $_.NAME -eq 'Name' }).VALUE
    $d = ($x.INSTANCE.PROPERTY | Where-Object { $_.NAME -eq 'Data' }).VALUE
    Write-Output "$n=$d"
}`

func itemsScript(vmName, host string) string {
	return fmt.Sprintf(itemsTemplate, quote(vmName), quote(host), quote(host))
}
