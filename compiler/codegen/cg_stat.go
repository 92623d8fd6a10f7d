package codegen

import (
	. "github.com/lollipopkit/luacore/compiler/ast"
)

func cgBlock(fi *funcInfo, node *Block) {
	for _, stat := range node.Stats {
		cgStat(fi, stat)
	}
	if node.RetExps != nil {
		cgRetStat(fi, node.RetExps, node.LastLine)
	}
}

func cgStat(fi *funcInfo, stat Stat) {
	switch stat := stat.(type) {
	case *LocalVarDeclStat:
		cgLocalVarDeclStat(fi, stat)
	case *AssignStat:
		cgAssignStat(fi, stat)
	case *FuncCallExp:
		cgFuncCallExpStat(fi, stat)
	case *IfStat:
		cgIfStat(fi, stat)
	case *WhileStat:
		cgWhileStat(fi, stat)
	case *ForNumStat:
		cgForNumStat(fi, stat)
	case *ForInStat:
		cgForInStat(fi, stat)
	case *LocalFuncDefStat:
		cgLocalFuncDefStat(fi, stat)
	case *BreakStat:
		cgBreakStat(fi, stat)
	case *DoStat:
		cgDoStat(fi, stat)
	case *RepeatStat:
		cgRepeatStat(fi, stat)
	case *Label:
		cgLabelStat(fi, stat)
	case *GotoStat:
		cgGotoStat(fi, stat)
	case *EmptyStat:
		// nothing to do
	default:
		panic("unreachable!")
	}
}

func cgDoStat(fi *funcInfo, node *DoStat) {
	fi.enterScope(false)
	cgBlock(fi, node.Block)
	fi.closeOpenUpvals(node.Block.LastLine)
	fi.exitScope(fi.pc() + 1)
}

func cgRepeatStat(fi *funcInfo, node *RepeatStat) {
	pcBeforeBlock := fi.pc()

	fi.enterScope(true)
	cgBlock(fi, node.Block)

	// until's expression can see locals declared inside the block, so it's
	// evaluated before exitScope.
	oldRegs := fi.usedRegs
	a, _ := expToOpArg(fi, node.Exp, ARG_REG)
	fi.usedRegs = oldRegs

	line := lastLineOf(node.Exp)
	fi.emitTest(line, a, 0)
	fi.emitJmp(line, 0, pcBeforeBlock-fi.pc()-1)

	fi.closeOpenUpvals(node.Block.LastLine)
	fi.exitScope(fi.pc() + 1)
}

// ‘::’ Name ‘::’
func cgLabelStat(fi *funcInfo, node *Label) {
	if fi.labels == nil {
		fi.labels = map[string]int{}
	}
	pc := fi.pc() + 1
	fi.labels[node.Name] = pc

	remaining := fi.pendingGotos[:0]
	for _, g := range fi.pendingGotos {
		if g.name == node.Name {
			fi.fixSbx(g.pc, pc-g.pc-1)
		} else {
			remaining = append(remaining, g)
		}
	}
	fi.pendingGotos = remaining
}

// goto Name
func cgGotoStat(fi *funcInfo, node *GotoStat) {
	if pc, ok := fi.labels[node.Name]; ok {
		fi.emitJmp(node.Line, 0, pc-fi.pc()-2)
		return
	}
	pc := fi.emitJmp(node.Line, 0, 0)
	fi.pendingGotos = append(fi.pendingGotos, gotoJmp{node.Name, pc, node.Line})
}

func cgLocalFuncDefStat(fi *funcInfo, node *LocalFuncDefStat) {
	r := fi.addLocVar(node.Name, fi.pc()+2)
	cgFuncDefExp(fi, node.Exp, r)
}

func cgBreakStat(fi *funcInfo, node *BreakStat) {
	pc := fi.emitJmp(node.Line, 0, 0)
	fi.addBreakJmp(pc)
}

func cgLocalVarDeclStat(fi *funcInfo, node *LocalVarDeclStat) {
	exps := node.ExpList
	nExps := len(exps)
	nNames := len(node.NameList)

	oldRegs := fi.usedRegs

	if nExps == nNames {
		for _, exp := range exps {
			a := fi.allocReg()
			cgExp(fi, exp, a, 1)
		}
	} else if nExps > nNames {
		for i, exp := range exps {
			a := fi.allocReg()
			if i == nExps-1 && isVarargOrFuncCall(exp) {
				cgExp(fi, exp, a, 0)
			} else {
				cgExp(fi, exp, a, 1)
			}
		}
	} else { // nNames > nExps
		multRet := false
		for i, exp := range exps {
			a := fi.allocReg()
			if i == nExps-1 && isVarargOrFuncCall(exp) {
				multRet = true
				n := nNames - nExps + 1
				cgExp(fi, exp, a, n)
				fi.allocRegs(n - 1)
			} else {
				cgExp(fi, exp, a, 1)
			}
		}
		if !multRet {
			n := nNames - nExps
			a := fi.allocRegs(n)
			fi.emitLoadNil(node.LastLine, a, n)
		}
	}

	fi.usedRegs = oldRegs
	startPC := fi.pc() + 1
	for _, name := range node.NameList {
		fi.addLocVar(name, startPC)
	}
}

func cgAssignStat(fi *funcInfo, node *AssignStat) {
	exps := node.ExpList
	nExps := len(exps)
	nVars := len(node.VarList)

	tRegs := make([]int, nVars)
	kRegs := make([]int, nVars)
	vRegs := make([]int, nVars)
	oldRegs := fi.usedRegs

	for i, exp := range node.VarList {
		if taExp, ok := exp.(*TableAccessExp); ok {
			tRegs[i] = fi.allocReg()
			cgExp(fi, taExp.PrefixExp, tRegs[i], 1)
			kRegs[i] = fi.allocReg()
			cgExp(fi, taExp.KeyExp, kRegs[i], 1)
		}
	}
	for i := 0; i < nVars; i++ {
		vRegs[i] = fi.usedRegs + i
	}

	if nExps >= nVars {
		for i, exp := range exps {
			a := fi.allocReg()
			if i >= nVars && i == nExps-1 && isVarargOrFuncCall(exp) {
				cgExp(fi, exp, a, 0)
			} else {
				cgExp(fi, exp, a, 1)
			}
		}
	} else { // nVars > nExps
		multRet := false
		for i, exp := range exps {
			a := fi.allocReg()
			if i == nExps-1 && isVarargOrFuncCall(exp) {
				multRet = true
				n := nVars - nExps + 1
				cgExp(fi, exp, a, n)
				fi.allocRegs(n - 1)
			} else {
				cgExp(fi, exp, a, 1)
			}
		}
		if !multRet {
			n := nVars - nExps
			a := fi.allocRegs(n)
			fi.emitLoadNil(node.LastLine, a, n)
		}
	}

	for i, exp := range node.VarList {
		line := node.LastLine
		if nameExp, ok := exp.(*NameExp); ok {
			varName := nameExp.Name
			if a := fi.slotOfLocVar(varName); a >= 0 {
				fi.emitMove(line, a, vRegs[i])
			} else if idx := fi.indexOfUpval(varName); idx >= 0 {
				fi.emitSetUpval(line, vRegs[i], idx)
			} else if a := fi.slotOfLocVar("_ENV"); a >= 0 {
				fi.emitSetTable(line, a, 0x100+fi.indexOfConstant(varName), vRegs[i])
			} else {
				idx := fi.indexOfUpval("_ENV")
				fi.emitSetTabUp(line, idx, 0x100+fi.indexOfConstant(varName), vRegs[i])
			}
		} else {
			fi.emitSetTable(line, tRegs[i], kRegs[i], vRegs[i])
		}
	}

	fi.usedRegs = oldRegs
}

func cgFuncCallExpStat(fi *funcInfo, node *FuncCallExp) {
	r := fi.allocReg()
	cgFuncCallExp(fi, node, r, 0)
	fi.freeReg()
}

func cgIfStat(fi *funcInfo, node *IfStat) {
	pcJmpToEnds := make([]int, len(node.Exps))
	for i := range pcJmpToEnds {
		pcJmpToEnds[i] = -1
	}

	for i, exp := range node.Exps {
		oldRegs := fi.usedRegs
		a, _ := expToOpArg(fi, exp, ARG_REG)
		fi.usedRegs = oldRegs

		line := lastLineOf(exp)
		fi.emitTest(line, a, 0)
		pcJmpToNext := fi.emitJmp(line, 0, 0)

		fi.enterScope(false)
		cgBlock(fi, node.Blocks[i])
		fi.closeOpenUpvals(node.Blocks[i].LastLine)
		fi.exitScope(fi.pc() + 1)
		if i < len(node.Exps)-1 {
			pcJmpToEnds[i] = fi.emitJmp(node.Blocks[i].LastLine, 0, 0)
		}

		fi.fixSbx(pcJmpToNext, fi.pc()-pcJmpToNext)
	}

	for _, pc := range pcJmpToEnds {
		if pc >= 0 {
			fi.fixSbx(pc, fi.pc()-pc)
		}
	}
}

func cgWhileStat(fi *funcInfo, node *WhileStat) {
	pcBeforeExp := fi.pc()

	oldRegs := fi.usedRegs
	a, _ := expToOpArg(fi, node.Exp, ARG_REG)
	fi.usedRegs = oldRegs

	line := lastLineOf(node.Exp)
	fi.emitTest(line, a, 0)
	pcJmpToEnd := fi.emitJmp(line, 0, 0)

	fi.enterScope(true)
	cgBlock(fi, node.Block)
	fi.closeOpenUpvals(node.Block.LastLine)
	fi.emitJmp(node.Block.LastLine, 0, pcBeforeExp-fi.pc()-1)
	fi.exitScope(fi.pc() + 1)

	fi.fixSbx(pcJmpToEnd, fi.pc()-pcJmpToEnd)
}

func cgForNumStat(fi *funcInfo, node *ForNumStat) {
	forIndexVar := "(for index)"
	forLimitVar := "(for limit)"
	forStepVar := "(for step)"

	fi.enterScope(true)
	cgLocalVarDeclStat(fi, &LocalVarDeclStat{
		LastLine: node.LineOfDo,
		NameList: []string{forIndexVar, forLimitVar, forStepVar},
		ExpList:  []Exp{node.InitExp, node.LimitExp, node.StepExp},
	})
	a := fi.usedRegs - 3
	fi.addLocVar(node.VarName, fi.pc()+2)

	pcForPrep := fi.emitForPrep(node.LineOfFor, a, 0)
	cgBlock(fi, node.Block)
	fi.closeOpenUpvals(node.Block.LastLine)
	fi.exitScope(fi.pc() + 1)
	pcForLoop := fi.emitForLoop(node.LineOfDo, a, 0)

	fi.fixSbx(pcForPrep, pcForLoop-pcForPrep-1)
	fi.fixSbx(pcForLoop, pcForPrep-pcForLoop)
}

func cgForInStat(fi *funcInfo, node *ForInStat) {
	forGeneratorVar := "(for generator)"
	forStateVar := "(for state)"
	forControlVar := "(for control)"

	fi.enterScope(true)

	cgLocalVarDeclStat(fi, &LocalVarDeclStat{
		LastLine: node.LineOfDo,
		NameList: []string{forGeneratorVar, forStateVar, forControlVar},
		ExpList:  node.ExpList,
	})
	for _, name := range node.NameList {
		fi.addLocVar(name, fi.pc()+2)
	}

	pcJmpToTFC := fi.emitJmp(node.LineOfDo, 0, 0)
	cgBlock(fi, node.Block)
	fi.closeOpenUpvals(node.Block.LastLine)
	fi.fixSbx(pcJmpToTFC, fi.pc()-pcJmpToTFC)

	line := lineOf(node.ExpList[0])
	rGenerator := fi.slotOfLocVar(forGeneratorVar)
	fi.emitTForCall(line, rGenerator, len(node.NameList))
	fi.emitTForLoop(line, rGenerator+2, pcJmpToTFC-fi.pc()-1)

	fi.exitScope(fi.pc())
}

func cgRetStat(fi *funcInfo, exps []Exp, lastLine int) {
	nExps := len(exps)
	if nExps == 0 {
		fi.emitReturn(lastLine, 0, 0)
		return
	}

	if nExps == 1 {
		if nameExp, ok := exps[0].(*NameExp); ok {
			if r := fi.slotOfLocVar(nameExp.Name); r >= 0 {
				fi.emitReturn(lastLine, r, 1)
				return
			}
		}
		if fcExp, ok := exps[0].(*FuncCallExp); ok {
			r := fi.allocReg()
			cgTailCallExp(fi, fcExp, r)
			fi.freeReg()
			fi.emitReturn(lastLine, r, -1)
			return
		}
	}

	multRet := isVarargOrFuncCall(exps[nExps-1])
	for i, exp := range exps {
		r := fi.allocReg()
		if i == nExps-1 && multRet {
			cgExp(fi, exp, r, -1)
		} else {
			cgExp(fi, exp, r, 1)
		}
	}
	fi.freeRegs(nExps)

	a := fi.usedRegs
	if multRet {
		fi.emitReturn(lastLine, a, -1)
	} else {
		fi.emitReturn(lastLine, a, nExps)
	}
}
